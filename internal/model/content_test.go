package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestIsValidSection(t *testing.T) {
	for _, s := range AllSections() {
		if !IsValidSection(s) {
			t.Errorf("IsValidSection(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "Hero", "sidebar", "hero "} {
		if IsValidSection(s) {
			t.Errorf("IsValidSection(%q) = true, want false", s)
		}
	}
}

func TestIsValidBlockType(t *testing.T) {
	for _, bt := range AllBlockTypes() {
		if !IsValidBlockType(bt) {
			t.Errorf("IsValidBlockType(%q) = false, want true", bt)
		}
	}
	if IsValidBlockType("video") {
		t.Error("IsValidBlockType(video) = true, want false")
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name      string
		blockType string
		payload   string
		wantErr   bool
	}{
		{
			name:      "valid text payload",
			blockType: BlockTypeText,
			payload:   `{"title":"Hero","subtitle":"Recycle","buttons":[{"text":"Go","link":"/join"}]}`,
		},
		{
			name:      "valid image payload",
			blockType: BlockTypeImage,
			payload:   `{"url":"/uploads/a.jpg","alt":"plant"}`,
		},
		{
			name:      "valid list payload",
			blockType: BlockTypeList,
			payload:   `{"items":[{"title":"Pickup","icon":"truck"}]}`,
		},
		{
			name:      "valid form payload",
			blockType: BlockTypeForm,
			payload:   `{"fields":[{"name":"email","label":"Email","type":"email","required":true}]}`,
		},
		{
			name:      "valid stats payload",
			blockType: BlockTypeStats,
			payload:   `{"stats":[{"label":"Tons recycled","value":"1200"}]}`,
		},
		{
			name:      "unknown field rejected",
			blockType: BlockTypeText,
			payload:   `{"title":"Hero","items":[]}`,
			wantErr:   true,
		},
		{
			name:      "foreign type fields rejected",
			blockType: BlockTypeImage,
			payload:   `{"url":"/a.jpg","stats":[]}`,
			wantErr:   true,
		},
		{
			name:      "empty payload",
			blockType: BlockTypeText,
			payload:   ``,
			wantErr:   true,
		},
		{
			name:      "malformed JSON",
			blockType: BlockTypeText,
			payload:   `{"title":`,
			wantErr:   true,
		},
		{
			name:      "unknown block type",
			blockType: "video",
			payload:   `{}`,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodePayload(tt.blockType, json.RawMessage(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodePayloadReturnsTypedValue(t *testing.T) {
	decoded, err := DecodePayload(BlockTypeText, json.RawMessage(`{"title":"Hello"}`))
	if err != nil {
		t.Fatalf("DecodePayload() error = %v", err)
	}
	text, ok := decoded.(*TextPayload)
	if !ok {
		t.Fatalf("DecodePayload() returned %T, want *TextPayload", decoded)
	}
	if text.Title != "Hello" {
		t.Errorf("Title = %q, want Hello", text.Title)
	}
}

func TestDecodePayloadErrorNamesType(t *testing.T) {
	_, err := DecodePayload(BlockTypeStats, json.RawMessage(`{"bogus":1}`))
	if err == nil || !strings.Contains(err.Error(), "stats") {
		t.Errorf("error = %v, want mention of stats", err)
	}
}
