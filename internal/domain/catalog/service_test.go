package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/bakeshop/internal/domain/product"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID      map[int64]*product.Product
	nextID    int64
	created   []*product.Product
	updated   []*product.Product
	deleted   []int64
	createErr error
	updateErr error
	deleteErr error
}

func newMockProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[int64]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID, nextID: 100}
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	p.ID = m.nextID
	m.created = append(m.created, p)
	return nil
}

func (m *mockProductRepo) Update(_ context.Context, p *product.Product) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.byID[p.ID]; !ok {
		return product.ErrNotFound
	}
	m.updated = append(m.updated, p)
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockFileStore struct {
	saved   []string
	removed []string
	saveErr error
}

func (m *mockFileStore) Save(filename string, _ io.Reader) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	stored := fmt.Sprintf("1700000000_%s", filename)
	m.saved = append(m.saved, stored)
	return stored, nil
}

func (m *mockFileStore) Remove(name string) error {
	m.removed = append(m.removed, name)
	return nil
}

func upload(filename string) *Upload {
	return &Upload{Filename: filename, Content: strings.NewReader("content")}
}

// --- Tests ---

func TestCreate(t *testing.T) {
	repo := newMockProductRepo()
	files := &mockFileStore{}
	svc := NewService(repo, files)

	id, err := svc.Create(context.Background(), Input{Name: "Croissant", Price: "3.50"})
	require.NoError(t, err)
	assert.Equal(t, int64(101), id)

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Croissant", repo.created[0].Name)
	assert.True(t, decimal.RequireFromString("3.50").Equal(repo.created[0].Price))
	assert.Empty(t, repo.created[0].Image)
	assert.Empty(t, files.saved)
}

func TestCreate_WithImage(t *testing.T) {
	repo := newMockProductRepo()
	files := &mockFileStore{}
	svc := NewService(repo, files)

	_, err := svc.Create(context.Background(), Input{
		Name:  "Cake",
		Price: "12.00",
		Image: upload("cake.PNG"),
	})
	require.NoError(t, err)

	require.Len(t, files.saved, 1)
	require.Len(t, repo.created, 1)
	assert.Equal(t, files.saved[0], repo.created[0].Image)
}

func TestCreate_EmptyName(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewService(repo, &mockFileStore{})

	_, err := svc.Create(context.Background(), Input{Name: "  ", Price: "3.50"})

	var vErr *product.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "name", vErr.Field)
	assert.Empty(t, repo.created)
}

func TestCreate_BadPrice(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewService(repo, &mockFileStore{})

	for _, price := range []string{"", "abc", "-1.50"} {
		_, err := svc.Create(context.Background(), Input{Name: "Croissant", Price: price})

		var vErr *product.ValidationError
		require.ErrorAs(t, err, &vErr, "price %q", price)
		assert.Equal(t, "price", vErr.Field)
	}
	assert.Empty(t, repo.created)
}

func TestCreate_InvalidFileType(t *testing.T) {
	repo := newMockProductRepo()
	files := &mockFileStore{}
	svc := NewService(repo, files)

	_, err := svc.Create(context.Background(), Input{
		Name:  "Cake",
		Price: "12.00",
		Image: upload("cake.exe"),
	})

	var ftErr *InvalidFileTypeError
	require.ErrorAs(t, err, &ftErr)
	assert.Equal(t, "cake.exe", ftErr.Filename)
	assert.Empty(t, repo.created)
	assert.Empty(t, files.saved)
}

func TestCreate_SaveError(t *testing.T) {
	repo := newMockProductRepo()
	files := &mockFileStore{saveErr: errors.New("disk full")}
	svc := NewService(repo, files)

	_, err := svc.Create(context.Background(), Input{
		Name:  "Cake",
		Price: "12.00",
		Image: upload("cake.png"),
	})

	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestUpdate(t *testing.T) {
	existing := product.Product{ID: 7, Name: "Old", Price: decimal.NewFromInt(1)}
	repo := newMockProductRepo(existing)
	files := &mockFileStore{}
	svc := NewService(repo, files)

	err := svc.Update(context.Background(), 7, Input{Name: "Croissant", Price: "3.50"})
	require.NoError(t, err)

	require.Len(t, repo.updated, 1)
	assert.Equal(t, "Croissant", repo.updated[0].Name)
	assert.Empty(t, files.removed)
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewService(repo, &mockFileStore{})

	err := svc.Update(context.Background(), 99, Input{Name: "Croissant", Price: "3.50"})
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestUpdate_ReplacesImage(t *testing.T) {
	existing := product.Product{ID: 7, Name: "Cake", Price: decimal.NewFromInt(12), Image: "100_old.png"}
	repo := newMockProductRepo(existing)
	files := &mockFileStore{}
	svc := NewService(repo, files)

	err := svc.Update(context.Background(), 7, Input{
		Name:  "Cake",
		Price: "12.00",
		Image: upload("new.jpg"),
	})
	require.NoError(t, err)

	require.Len(t, files.saved, 1)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, files.saved[0], repo.updated[0].Image)
	// The old file goes away only after the new one is stored.
	assert.Equal(t, []string{"100_old.png"}, files.removed)
}

func TestUpdate_KeepsImageWithoutUpload(t *testing.T) {
	existing := product.Product{ID: 7, Name: "Cake", Price: decimal.NewFromInt(12), Image: "100_old.png"}
	repo := newMockProductRepo(existing)
	files := &mockFileStore{}
	svc := NewService(repo, files)

	err := svc.Update(context.Background(), 7, Input{Name: "Cake", Price: "13.00"})
	require.NoError(t, err)

	require.Len(t, repo.updated, 1)
	assert.Equal(t, "100_old.png", repo.updated[0].Image)
	assert.Empty(t, files.removed)
}

func TestUpdate_FailedSaveKeepsOldImage(t *testing.T) {
	existing := product.Product{ID: 7, Name: "Cake", Price: decimal.NewFromInt(12), Image: "100_old.png"}
	repo := newMockProductRepo(existing)
	files := &mockFileStore{saveErr: errors.New("disk full")}
	svc := NewService(repo, files)

	err := svc.Update(context.Background(), 7, Input{
		Name:  "Cake",
		Price: "12.00",
		Image: upload("new.jpg"),
	})

	require.Error(t, err)
	assert.Empty(t, repo.updated)
	assert.Empty(t, files.removed)
}

func TestDelete_RemovesImage(t *testing.T) {
	existing := product.Product{ID: 7, Name: "Cake", Price: decimal.NewFromInt(12), Image: "100_cake.png"}
	repo := newMockProductRepo(existing)
	files := &mockFileStore{}
	svc := NewService(repo, files)

	err := svc.Delete(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []int64{7}, repo.deleted)
	assert.Equal(t, []string{"100_cake.png"}, files.removed)
}

func TestDelete_NoImage(t *testing.T) {
	existing := product.Product{ID: 7, Name: "Cake", Price: decimal.NewFromInt(12)}
	repo := newMockProductRepo(existing)
	files := &mockFileStore{}
	svc := NewService(repo, files)

	err := svc.Delete(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, []int64{7}, repo.deleted)
	assert.Empty(t, files.removed)
}

func TestDelete_NotFound(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewService(repo, &mockFileStore{})

	err := svc.Delete(context.Background(), 99)
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Empty(t, repo.deleted)
}
