package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewS3Storage(t *testing.T) {
	tests := []struct {
		name       string
		cfg        S3Config
		wantError  bool
		wantPrefix string
		wantExpiry time.Duration
	}{
		{
			name:       "defaults",
			cfg:        S3Config{Bucket: "reports", Region: "us-east-1"},
			wantExpiry: DefaultPresignExpiry,
		},
		{
			name:       "prefix and expiry",
			cfg:        S3Config{Bucket: "reports", Region: "us-east-1", Prefix: "/uiscript/nightly/", PresignExpiry: time.Hour},
			wantPrefix: "uiscript/nightly",
			wantExpiry: time.Hour,
		},
		{
			name:       "custom endpoint",
			cfg:        S3Config{Bucket: "reports", Region: "us-east-1", Endpoint: "http://localhost:9000"},
			wantExpiry: DefaultPresignExpiry,
		},
		{name: "empty bucket", cfg: S3Config{Region: "us-east-1"}, wantError: true},
		{name: "empty region", cfg: S3Config{Bucket: "reports"}, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewS3Storage(context.Background(), tt.cfg)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Bucket, s.bucket)
			assert.Equal(t, tt.wantPrefix, s.prefix)
			assert.Equal(t, tt.wantExpiry, s.presignExpiration)
		})
	}
}

func TestS3Storage_Key(t *testing.T) {
	tests := []struct {
		name    string
		prefix  string
		path    string
		want    string
		wantErr bool
	}{
		{name: "no prefix", path: "login/report.json", want: "login/report.json"},
		{name: "with prefix", prefix: "nightly", path: "login/report.json", want: "nightly/login/report.json"},
		{name: "cleans path", path: "login/./shots/../report.json", want: "login/report.json"},
		{name: "empty path", path: "", wantErr: true},
		{name: "traversal", path: "../other-bucket-key", wantErr: true},
		{name: "absolute", path: "/login/report.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &S3Storage{bucket: "reports", prefix: tt.prefix}
			got, err := s.key(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestS3Storage_TrimPrefix(t *testing.T) {
	s := &S3Storage{prefix: "nightly"}
	assert.Equal(t, "login/report.json", s.trimPrefix("nightly/login/report.json"))

	bare := &S3Storage{}
	assert.Equal(t, "login/report.json", bare.trimPrefix("login/report.json"))
}

func TestIsS3NotFoundError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error", err: nil},
		{name: "generic error", err: context.Canceled},
		{name: "no such key", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, want: true},
		{name: "head not found", err: &smithy.GenericAPIError{Code: "NotFound"}, want: true},
		{name: "wrapped not found", err: errors.Join(errors.New("get object"), &smithy.GenericAPIError{Code: "NoSuchKey"}), want: true},
		{name: "access denied", err: &smithy.GenericAPIError{Code: "AccessDenied"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isS3NotFoundError(tt.err))
		})
	}
}
