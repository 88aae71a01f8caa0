package weather_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tgurley/smartline/adapters/weather"
)

func TestSeverityScore(t *testing.T) {
	tests := []struct {
		name     string
		cond     weather.Conditions
		expected int
	}{
		{"mild fall day", weather.Conditions{TemperatureF: 62, WindSpeedMph: 6}, 0},
		{"breezy", weather.Conditions{TemperatureF: 55, WindSpeedMph: 14}, 1},
		{"gale", weather.Conditions{TemperatureF: 55, WindSpeedMph: 25}, 2},
		{"drizzle", weather.Conditions{TemperatureF: 50, Precipitation: 0.5}, 1},
		{"downpour", weather.Conditions{TemperatureF: 50, Precipitation: 4.0}, 2},
		{"freezing", weather.Conditions{TemperatureF: 15, WindSpeedMph: 5}, 1},
		{"heat game", weather.Conditions{TemperatureF: 98, WindSpeedMph: 5}, 1},
		{"polar", weather.Conditions{TemperatureF: -5, WindSpeedMph: 5}, 2},
		{"blizzard", weather.Conditions{TemperatureF: 10, WindSpeedMph: 25, Precipitation: 3.0}, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weather.SeverityScore(tt.cond); got != tt.expected {
				t.Errorf("SeverityScore(%+v) = %d, want %d", tt.cond, got, tt.expected)
			}
		})
	}
}

func TestForecast_PicksNearestHour(t *testing.T) {
	kickoff := time.Date(2025, 11, 30, 18, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("temperature_unit"); got != "fahrenheit" {
			t.Errorf("expected fahrenheit request, got %q", got)
		}
		t0 := kickoff.Add(-time.Hour).Unix()
		t1 := kickoff.Unix()
		t2 := kickoff.Add(time.Hour).Unix()
		fmt.Fprintf(w, `{"hourly":{
			"time":[%d,%d,%d],
			"temperature_2m":[30,28,27],
			"precipitation":[0,1.5,2.0],
			"wind_speed_10m":[10,22,25]
		}}`, t0, t1, t2)
	}))
	defer srv.Close()

	client := weather.NewClient(weather.Config{BaseURL: srv.URL, Enabled: true})

	cond, err := client.Forecast(context.Background(), 42.77, -78.79, kickoff)
	if err != nil {
		t.Fatalf("Forecast failed: %v", err)
	}

	if cond.TemperatureF != 28 || cond.WindSpeedMph != 22 || cond.Precipitation != 1.5 {
		t.Errorf("picked wrong hourly slot: %+v", cond)
	}

	// Wind >=20 (+2) and precip >=0.2 (+1)
	if score := weather.SeverityScore(*cond); score != 3 {
		t.Errorf("expected severity 3, got %d", score)
	}
}

func TestForecast_NoSlotNearKickoff(t *testing.T) {
	kickoff := time.Date(2025, 11, 30, 18, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"hourly":{
			"time":[%d],
			"temperature_2m":[30],
			"precipitation":[0],
			"wind_speed_10m":[10]
		}}`, kickoff.AddDate(0, 0, -3).Unix())
	}))
	defer srv.Close()

	client := weather.NewClient(weather.Config{BaseURL: srv.URL, Enabled: true})

	if _, err := client.Forecast(context.Background(), 42.77, -78.79, kickoff); err == nil {
		t.Error("expected error when no forecast slot covers kickoff")
	}
}

func TestSeverityFor_Disabled(t *testing.T) {
	client := weather.NewClient(weather.Config{Enabled: false})
	if got := client.SeverityFor(context.Background(), 42.77, -78.79, time.Now()); got != 0 {
		t.Errorf("disabled client should score 0, got %d", got)
	}
}

func TestSeverityFor_ForecastFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := weather.NewClient(weather.Config{BaseURL: srv.URL, Enabled: true})
	if got := client.SeverityFor(context.Background(), 42.77, -78.79, time.Now()); got != 0 {
		t.Errorf("failed forecast should score 0, got %d", got)
	}
}
