package views

import (
	"errors"
	"testing"

	"cloudpico-weather/internal/geo"
	"cloudpico-weather/internal/i18n"
)

func TestPhaseNext(t *testing.T) {
	tests := []struct {
		from    Phase
		event   Event
		want    Phase
		wantErr bool
	}{
		{PhaseLoading, EventLoaded, PhaseData, false},
		{PhaseLoading, EventFailed, PhaseError, false},
		{PhaseError, EventRetry, PhaseLoading, false},
		{PhaseData, EventRefresh, PhaseLoading, false},
		{PhaseError, EventLoaded, PhaseError, true},
		{PhaseData, EventRetry, PhaseData, true},
		{PhaseLoading, EventRefresh, PhaseLoading, true},
	}
	for _, tt := range tests {
		got, err := tt.from.Next(tt.event)
		if got != tt.want || (err != nil) != tt.wantErr {
			t.Errorf("%s.Next(%s) = (%s, %v); want (%s, err=%v)", tt.from, tt.event, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestRetryAfterFailureReachesData(t *testing.T) {
	p := Settle(errors.New("boom"))
	if p != PhaseError {
		t.Fatalf("Settle(err) = %s; want error", p)
	}
	p, err := p.Next(EventRetry)
	if err != nil || p != PhaseLoading {
		t.Fatalf("retry = (%s, %v)", p, err)
	}
	if p, _ = p.Next(EventLoaded); p != PhaseData {
		t.Errorf("after retry success = %s; want data", p)
	}
}

func TestFailureMessage(t *testing.T) {
	geoErr := &geo.Error{Kind: geo.ErrTimeout, Runtime: geo.RuntimeBrowser}
	if got := FailureMessage(geoErr, i18n.Indonesian); got != "Waktu permintaan lokasi habis." {
		t.Errorf("geo failure message = %q", got)
	}
	if got := FailureMessage(errors.New("status 500"), i18n.Indonesian); got != "Gagal memuat data cuaca" {
		t.Errorf("fetch failure message = %q", got)
	}
	if got := FailureMessage(errors.New("status 500"), i18n.English); got != "Failed to load weather data" {
		t.Errorf("fetch failure message (en) = %q", got)
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		raw, lang, want string
	}{
		{"2024-08-17T09:00", "id", "17 Agu 2024 09:00"},
		{"2024-08-17T09:00", "en", "17 Aug 2024 09:00"},
		{"2024-05-01T23:30:00+07:00", "id", "1 Mei 2024 23:30"},
		{"not a time", "id", "not a time"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.raw, tt.lang); got != tt.want {
			t.Errorf("FormatTime(%q, %q) = %q; want %q", tt.raw, tt.lang, got, tt.want)
		}
	}
}
