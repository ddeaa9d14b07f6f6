package utils

import "testing"

func TestExtractObjectPath(t *testing.T) {
	path, err := ExtractObjectPath("https://storage.googleapis.com/my-bucket/products/123_cola.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "products/123_cola.jpg" {
		t.Errorf("unexpected path %q", path)
	}
}

func TestExtractObjectPathRejectsForeignURL(t *testing.T) {
	if _, err := ExtractObjectPath("https://example.com/my-bucket/products/x.jpg"); err == nil {
		t.Error("expected an error for a non-storage URL")
	}
}

func TestExtractObjectPathRejectsBucketOnly(t *testing.T) {
	if _, err := ExtractObjectPath("https://storage.googleapis.com/my-bucket"); err == nil {
		t.Error("expected an error without an object path")
	}
}
