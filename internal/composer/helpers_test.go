package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  --Hello,   World!!  ", "hello-world"},
		{"Güzel Şiirler", "guzel-siirler"},
		{"ĞÜŞİÖÇ ğüşıöç", "gusioc-gusioc"},
		{"İnovasyon ve Girişimcilik", "inovasyon-ve-girisimcilik"},
		{"2024: A Year", "2024-a-year"},
		{"Café au lait", "caf-au-lait"},
		{"***", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got := Slugify(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, got, Slugify(got), "slugify must be idempotent")
			assert.NotContains(t, got, "--")
			assert.False(t, strings.HasPrefix(got, "-") || strings.HasSuffix(got, "-"))
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "01.01.2024", want: "2024-01-01"},
		{in: "29.02.2024", want: "2024-02-29"},
		{in: "2024-05-17", want: "2024-05-17"},
		{in: "2024-05-17T23:10:00Z", want: "2024-05-17"},
		{in: "2024-05-17T08:00:00+03:00", want: "2024-05-17"},
		{in: "31.02.2024", wantErr: true},
		{in: "29.02.2023", wantErr: true},
		{in: "32.01.2024", wantErr: true},
		{in: "00.01.2024", wantErr: true},
		{in: "10.13.2024", wantErr: true},
		{in: "10.10.1899", wantErr: true},
		{in: "10.10.2101", wantErr: true},
		{in: "1.1.2024", wantErr: true},
		{in: "2024-02-30", wantErr: true},
		{in: "yesterday", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizeDate(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeDate_RoundTrip(t *testing.T) {
	for _, in := range []string{"01.01.2024", "31.12.1999", "29.02.2000", "15.06.2100", "01.01.1900"} {
		iso, err := NormalizeDate(in)
		require.NoError(t, err)
		back, err := FormatDisplayDate(iso)
		require.NoError(t, err)
		assert.Equal(t, in, back)
	}
}

func TestEstimateReadingTime(t *testing.T) {
	assert.Equal(t, 2, EstimateReadingTime(strings.Repeat("kelime ", 400)))
	assert.Equal(t, 1, EstimateReadingTime("kelime"))
	assert.Equal(t, 2, EstimateReadingTime(strings.Repeat("kelime ", 201)))
	assert.Equal(t, 1, EstimateReadingTime(""))
}

func TestParseReadingTime(t *testing.T) {
	testCases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "5", want: 5},
		{in: " 12 ", want: 12},
		{in: "2.5", want: 3},
		{in: "999", want: 999},
		{in: "0", wantErr: true},
		{in: "0.4", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "999.5", wantErr: true},
		{in: "abc", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseReadingTime(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveExcerpt(t *testing.T) {
	assert.Equal(t, "Kısa....", DeriveExcerpt("Kısa."))

	long := strings.Repeat("ç", 250)
	got := DeriveExcerpt(long)
	assert.Equal(t, strings.Repeat("ç", 200)+"...", got)
}
