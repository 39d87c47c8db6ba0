package format_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/moneynote/internal/format"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantKo  bool
		wantErr bool
	}{
		{name: "Empty", in: ""},
		{name: "English", in: "en"},
		{name: "Korean", in: "ko", wantKo: true},
		{name: "KoreanRegion", in: "ko-KR", wantKo: true},
		{name: "Garbage", in: "!!", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := format.New(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, format.ErrUnsupportedLocale)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKo, l.Today() == "오늘")
		})
	}
}

func TestLocale_Amounts(t *testing.T) {
	ko, err := format.New("ko")
	require.NoError(t, err)

	assert.Equal(t, "12,000", format.English.Amount(12000))
	assert.Equal(t, "12,000", format.English.Currency(12000))
	assert.Equal(t, "12,000원", ko.Currency(12000))
	assert.Equal(t, "-1,500원", ko.Signed(1500, false))
	assert.Equal(t, "+300", format.English.Signed(300, true))
}

func TestLocale_Dates(t *testing.T) {
	ko, err := format.New("ko")
	require.NoError(t, err)

	now := time.Date(2024, 1, 10, 21, 0, 0, 0, time.UTC)
	morning := time.Date(2024, 1, 5, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "Today", format.English.DayLabel(now, now))
	assert.Equal(t, "오늘", ko.DayLabel(now, now))
	assert.Equal(t, "January 5", format.English.DayLabel(morning, now))
	assert.Equal(t, "1월 5일", ko.DayLabel(morning, now))

	assert.Equal(t, "January 2024", format.English.MonthLabel(2024, time.January))
	assert.Equal(t, "2024년 1월", ko.MonthLabel(2024, time.January))

	assert.Equal(t, "9:05 AM", format.English.Time(morning))
	assert.Equal(t, "오전 9:05", ko.Time(morning))
	assert.Equal(t, "오후 9:00", ko.Time(now))

	assert.Equal(t, "Friday, January 5, 2024", format.English.Date(morning))
	assert.Equal(t, "2024년 1월 5일 (금)", ko.Date(morning))
	assert.Len(t, ko.Weekdays(), 7)
}
