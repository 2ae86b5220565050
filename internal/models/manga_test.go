package models

import (
	"encoding/json"
	"testing"
)

func TestChapterNumberMarshal(t *testing.T) {
	tests := []struct {
		in   ChapterNumber
		want string
	}{
		{ChapterNumber(10), `"10"`},
		{ChapterNumber(10.5), `"10.5"`},
		{ChapterNumber(0.5), `"0.5"`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("Marshal(%v) failed: %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestChapterNumberUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{`"10.5"`, 10.5, false},
		{`10.5`, 10.5, false}, // bare JSON numbers are accepted too
		{`"7"`, 7, false},
		{`"abc"`, 0, true},
	}
	for _, tt := range tests {
		var n ChapterNumber
		err := json.Unmarshal([]byte(tt.in), &n)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%s): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", tt.in, err)
		}
		if float64(n) != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, float64(n), tt.want)
		}
	}
}
