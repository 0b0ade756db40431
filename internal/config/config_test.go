package config

import (
	"reflect"
	"testing"
	"time"
)

func TestUpdateFromCoversEveryField(t *testing.T) {
	other := Config{
		Addr:              ":9999",
		ReadHeaderTimeout: 1 * time.Second,
		ShutdownTimeout:   2 * time.Second,
		LogLevel:          "debug",
		LogFormat:         "json",
		StoreURL:          "https://store.example",
		StoreAnonKey:      "anon-key",
		StoreBackend:      StoreBackendLocal,
		StorePath:         "other.db",
		ProviderAppID:     "app-id",
		ProviderAPIKey:    "api-key",
		ProviderEndpoint:  "https://push.example",
		SendTimeout:       3 * time.Second,
		SendsPerMinute:    5,
		RelayURL:          "https://relay.example",
	}

	// Guards the test itself: a field added to Config must get a non-zero
	// value above, which in turn makes the coverage check below meaningful.
	ov := reflect.ValueOf(other)
	for _, field := range reflect.VisibleFields(ov.Type()) {
		if ov.FieldByIndex(field.Index).IsZero() {
			t.Fatalf("field %s not exercised; give it a non-zero value here", field.Name)
		}
	}

	got := Default()
	got.UpdateFrom(other)
	if !reflect.DeepEqual(got, other) {
		t.Errorf("UpdateFrom skipped fields:\n got  %+v\n want %+v", got, other)
	}
}

func TestUpdateFromZeroKeepsDefaults(t *testing.T) {
	got := Default()
	got.UpdateFrom(Config{})
	if !reflect.DeepEqual(got, Default()) {
		t.Errorf("zero overrides changed the config: %+v", got)
	}
}

func TestUpdateFromStoreURLSwitchesToHosted(t *testing.T) {
	got := Default()
	got.UpdateFrom(Config{StoreURL: "https://store.example"})
	if got.StoreBackend != StoreBackendHosted {
		t.Errorf("expected hosted backend, got %q", got.StoreBackend)
	}
}
