package db

import (
	"testing"

	"github.com/Spok95/sekretariat/internal/apperr"
)

func TestValidateFileURL(t *testing.T) {
	cases := []struct {
		url string
		ok  bool
	}{
		{"https://www.mediafire.com/file/abc123/proposal.pdf/file", true},
		{"https://mediafire.com/folder/xyz", true},
		{"https://WWW.MEDIAFIRE.COM/file/a", true},
		{"http://www.mediafire.com/file/abc", false},
		{"https://drive.google.com/file/d/1", false},
		{"https://mediafire.com.evil.net/file", false},
		{"mediafire.com/file/abc", false},
		{"", false},
	}
	for _, c := range cases {
		t.Run(c.url, func(t *testing.T) {
			err := ValidateFileURL(c.url)
			if c.ok && err != nil {
				t.Fatalf("want ok, got %v", err)
			}
			if !c.ok && apperr.KindOf(err) != apperr.KindValidation {
				t.Fatalf("want validation error, got %v", err)
			}
		})
	}
}
