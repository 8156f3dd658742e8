package upload

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := SubmitRequest{
		FileName:    "report.pdf",
		Data:        []byte("%PDF-1.4"),
		Title:       "Quarterly Report",
		Description: "Q2 figures",
	}

	tests := []struct {
		name      string
		mutate    func(r *SubmitRequest)
		wantField string
	}{
		{
			name:   "valid request",
			mutate: func(r *SubmitRequest) {},
		},
		{
			name:      "title too short",
			mutate:    func(r *SubmitRequest) { r.Title = "ab" },
			wantField: "documentTitle",
		},
		{
			name:      "title too long",
			mutate:    func(r *SubmitRequest) { r.Title = strings.Repeat("a", 101) },
			wantField: "documentTitle",
		},
		{
			name:      "title with blocked characters",
			mutate:    func(r *SubmitRequest) { r.Title = "Report <script>" },
			wantField: "documentTitle",
		},
		{
			name:      "whitespace-only title",
			mutate:    func(r *SubmitRequest) { r.Title = "     " },
			wantField: "documentTitle",
		},
		{
			name:      "description too long",
			mutate:    func(r *SubmitRequest) { r.Description = strings.Repeat("x", 501) },
			wantField: "documentDescription",
		},
		{
			name:      "empty file",
			mutate:    func(r *SubmitRequest) { r.Data = nil },
			wantField: "file",
		},
		{
			name:      "file too large",
			mutate:    func(r *SubmitRequest) { r.Data = make([]byte, MaxFileSize+1) },
			wantField: "file",
		},
		{
			name:      "disallowed extension",
			mutate:    func(r *SubmitRequest) { r.FileName = "malware.exe" },
			wantField: "file",
		},
		{
			name:   "uppercase extension allowed",
			mutate: func(r *SubmitRequest) { r.FileName = "SCAN.PDF" },
		},
		{
			name:   "title at exact bounds",
			mutate: func(r *SubmitRequest) { r.Title = strings.Repeat("a", 100) },
		},
		{
			name:   "accented title counted in characters not bytes",
			mutate: func(r *SubmitRequest) { r.Title = strings.Repeat("á", 60) },
		},
		{
			name:   "accented title at max length",
			mutate: func(r *SubmitRequest) { r.Title = strings.Repeat("ñ", 100) },
		},
		{
			name:      "accented title over max length",
			mutate:    func(r *SubmitRequest) { r.Title = strings.Repeat("é", 101) },
			wantField: "documentTitle",
		},
		{
			name:   "accented description counted in characters not bytes",
			mutate: func(r *SubmitRequest) { r.Description = strings.Repeat("ó", 500) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}

			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T (%v)", err, err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verr.Field)
			}
		})
	}
}
