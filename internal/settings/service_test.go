package settings

import (
	"context"
	"sort"
	"testing"

	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
)

type stubSettingRepo struct {
	values map[string]string
}

func newStubSettingRepo() *stubSettingRepo {
	return &stubSettingRepo{values: map[string]string{}}
}

func (r *stubSettingRepo) List(context.Context) ([]models.Setting, error) {
	keys := make([]string, 0, len(r.values))
	for key := range r.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]models.Setting, 0, len(keys))
	for _, key := range keys {
		out = append(out, models.Setting{Key: key, Value: r.values[key]})
	}
	return out, nil
}

func (r *stubSettingRepo) Find(_ context.Context, key string) (*models.Setting, error) {
	value, ok := r.values[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &models.Setting{Key: key, Value: value}, nil
}

func (r *stubSettingRepo) Upsert(_ context.Context, key, value string) (*models.Setting, error) {
	r.values[key] = value
	return &models.Setting{Key: key, Value: value}, nil
}

func (r *stubSettingRepo) Delete(_ context.Context, key string) error {
	delete(r.values, key)
	return nil
}

func TestUpsertThenGet(t *testing.T) {
	svc, err := NewService(newStubSettingRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Upsert(context.Background(), UpsertRequest{Key: KeyStoreName, Value: "ShopEase"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	setting, err := svc.Get(context.Background(), KeyStoreName)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if setting.Value != "ShopEase" {
		t.Fatalf("expected ShopEase, got %q", setting.Value)
	}
}

func TestGetUnknownKeyIsNotFound(t *testing.T) {
	svc, err := NewService(newStubSettingRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Get(context.Background(), "missing_key")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpsertRejectsBlankKey(t *testing.T) {
	svc, err := NewService(newStubSettingRepo())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Upsert(context.Background(), UpsertRequest{Key: "   ", Value: "x"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRemovesSetting(t *testing.T) {
	repo := newStubSettingRepo()
	repo.values[KeySupportEmail] = "help@shopease.in"
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.Delete(context.Background(), KeySupportEmail); err != nil {
		t.Fatalf("delete: %v", err)
	}
	settings, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(settings) != 0 {
		t.Fatalf("expected empty settings, got %d", len(settings))
	}
}
