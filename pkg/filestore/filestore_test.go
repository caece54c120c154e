// Copyright Open Responses Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package filestore

import "testing"

func TestStem(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"report.pdf", "report"},
		{"directives/1.DIRECTIVE (UE) 20192161.html", "1.DIRECTIVE (UE) 20192161"},
		{"a/b/archive.tar.gz", "archive.tar"},
		{"README", "README"},
	}
	for _, tt := range tests {
		if got := Stem(tt.key); got != tt.want {
			t.Errorf("Stem(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestSplitURI(t *testing.T) {
	tests := []struct {
		uri        string
		bucket     string
		key        string
		wantParsed bool
	}{
		{"s3://docs/directives/a.html", "docs", "directives/a.html", true},
		{"s3://docs/a.pdf", "docs", "a.pdf", true},
		{"s3://docs", "", "", false},
		{"s3:///a.pdf", "", "", false},
		{"/tmp/a.pdf", "", "", false},
		{"https://docs/a.pdf", "", "", false},
	}
	for _, tt := range tests {
		bucket, key, ok := SplitURI(tt.uri)
		if ok != tt.wantParsed || bucket != tt.bucket || key != tt.key {
			t.Errorf("SplitURI(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.uri, bucket, key, ok, tt.bucket, tt.key, tt.wantParsed)
		}
	}
}
