package service

import (
	"context"
	"errors"
	"testing"

	"carmantra_backend/internal/bookings/transport"
	"carmantra_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestSplitName(t *testing.T) {
	cases := []struct {
		name  string
		first string
		last  string
	}{
		{"Ravi Kumar", "Ravi", "Kumar"},
		{"Ravi", "Ravi", ""},
		{"Ravi Kumar Sharma", "Ravi", "Kumar Sharma"},
		{"", "", ""},
		{"  Ravi  ", "Ravi", ""},
	}

	for _, tc := range cases {
		first, last := splitName(tc.name)
		if first != tc.first || last != tc.last {
			t.Errorf("splitName(%q) = (%q, %q), want (%q, %q)", tc.name, first, last, tc.first, tc.last)
		}
	}
}

func TestRequestUploadWithoutStorageConfigured(t *testing.T) {
	svc := New(nil, nil, nil, "", "IN")

	_, err := svc.RequestUpload(context.Background(), uuid.New(), transport.RequestUploadRequest{
		FileName:    "front.jpg",
		ContentType: "image/jpeg",
		SizeBytes:   1024,
	})

	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindBadRequest {
		t.Fatalf("expected bad request error, got %v", err)
	}
}
