package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeDay(t *testing.T) {
	cases := map[int]string{
		1:  "Boa noite",
		2:  "Bom dia",
		11: "Bom dia",
		12: "Boa tarde",
		17: "Boa tarde",
		18: "Boa noite",
		23: "Boa noite",
	}
	for hour, want := range cases {
		assert.Equal(t, want, TimeDay(hour), "hour %d", hour)
	}
}

func TestDate(t *testing.T) {
	got := Date(1756400000000)
	parsed, err := time.ParseInLocation("2006-01-02 15:04:05", got, time.Local)
	require.NoError(t, err)
	assert.Equal(t, int64(1756400000), parsed.Unix())
}
