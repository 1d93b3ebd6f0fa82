package main

import (
	"reflect"
	"testing"
)

func TestParseContextFlags(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "empty",
		},
		{
			name:   "single pair",
			values: []string{"issn=0028-0836"},
			want:   map[string]string{"issn": "0028-0836"},
		},
		{
			name:   "multiple pairs",
			values: []string{"country=US", "iso2=US"},
			want:   map[string]string{"country": "US", "iso2": "US"},
		},
		{
			name:   "value containing equals",
			values: []string{"note=a=b"},
			want:   map[string]string{"note": "a=b"},
		},
		{
			name:   "empty value allowed",
			values: []string{"issn="},
			want:   map[string]string{"issn": ""},
		},
		{
			name:    "missing equals",
			values:  []string{"issn"},
			wantErr: true,
		},
		{
			name:    "empty key",
			values:  []string{"=x"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseContextFlags(tt.values)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseContextFlags() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseContextFlags() = %v, want %v", got, tt.want)
			}
		})
	}
}
