package cache

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNewEntry(t *testing.T) {
	data := json.RawMessage(`{"shop":{"name":"Test"}}`)
	entry := NewEntry(data, time.Minute)

	if string(entry.Data) != string(data) {
		t.Errorf("Data = %s, want %s", entry.Data, data)
	}
	if entry.IsExpired() {
		t.Error("fresh entry reported expired")
	}

	ttl := entry.TTL()
	if ttl <= 59*time.Second || ttl > time.Minute {
		t.Errorf("TTL = %v, want ~1m", ttl)
	}
}

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name     string
		expires  time.Time
		expected bool
	}{
		{
			name:     "future expiry",
			expires:  time.Now().Add(time.Hour),
			expected: false,
		},
		{
			name:     "past expiry",
			expires:  time.Now().Add(-time.Second),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &Entry{Expires: tt.expires}
			if got := entry.IsExpired(); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEntry_TTL_Expired(t *testing.T) {
	entry := &Entry{Expires: time.Now().Add(-time.Minute)}

	if ttl := entry.TTL(); ttl != 0 {
		t.Errorf("TTL() = %v, want 0 for expired entry", ttl)
	}
}
