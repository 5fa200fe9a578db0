package handlers

import (
	"testing"

	"contactdesk-bot/internal/locales"

	"github.com/stretchr/testify/assert"
)

func TestLabelResolver(t *testing.T) {
	locales.Init("uz")
	r := NewLabelResolver(map[Intent]string{
		IntentFeedback: "BtnFeedback",
		IntentCancel:   "BtnCancel",
		IntentStart:    "",
	})

	tests := []struct {
		text   string
		want   Intent
		wantOK bool
	}{
		{"Fikr bildirish 💬", IntentFeedback, true},
		{"Leave feedback 💬", IntentFeedback, true},
		{"  Bekor qilish ❌ ", IntentCancel, true},
		{"/start", IntentStart, true},
		{"/start@contactdesk_bot payload", IntentStart, true},
		{"/ADMIN", IntentAdminLogin, true},
		{"/menu", IntentMainMenu, true},
		{"/cancel", IntentCancel, true},
		{"/unknown", "", false},
		{"fikr bildirish", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := r.Resolve(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntentTable_EveryLabelResolves(t *testing.T) {
	f := newFixture(t)
	for intent, route := range f.h.intents {
		if route.label == "" {
			continue
		}
		got, ok := f.h.resolver.Resolve(uz(route.label, nil))
		assert.True(t, ok, "label of %s does not resolve", intent)
		assert.Equal(t, intent, got)
	}
}

func TestKeyboardsOnlyUseRoutableLabels(t *testing.T) {
	f := newFixture(t)
	for _, layout := range [][][]string{mainMenuLayout, adminMenuLayout} {
		for _, row := range layout {
			for _, id := range row {
				_, ok := f.h.resolver.Resolve(uz(id, nil))
				assert.True(t, ok, "button %s has no intent", id)
			}
		}
	}
}
