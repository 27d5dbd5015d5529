package viewfinder

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name      string
		zoom      float64
		label     string
		recording bool
		aspect    float64
		want      Status
	}{
		{
			name: "wrong_aspect_idle",
			zoom: 1, label: "16:9", aspect: 1.30,
			want: Status{Text: AspectWarning, Color: WarningColor},
		},
		{
			name: "wrong_aspect_recording",
			zoom: 1, label: "16:9", recording: true, aspect: 1.30,
			want: Status{Text: AspectWarning, Color: WarningColor},
		},
		{
			name: "widescreen_display",
			zoom: 2, label: "21:9", aspect: 16.0 / 9.0,
			want: Status{Text: AspectWarning, Color: WarningColor},
		},
		{
			name: "recording",
			zoom: 1.5, label: "16:9", recording: true, aspect: 1.25,
			want: Status{Text: "1.50x  16:9  Recording: RECORDING", Color: AlertColor},
		},
		{
			name: "idle",
			zoom: 0.8, label: "21:9", aspect: 1.25,
			want: Status{Text: "0.80x  21:9  Recording: Inactive", Color: NeutralColor},
		},
		{
			name: "within_tolerance",
			zoom: 1.04321, label: "16:9", aspect: 1.259,
			want: Status{Text: "1.04x  16:9  Recording: Inactive", Color: NeutralColor},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := DeriveStatus(c.zoom, c.label, c.recording, c.aspect)
			if diff := cmp.Diff(c.want, got); diff != "" {
				t.Fatalf("DeriveStatus mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
