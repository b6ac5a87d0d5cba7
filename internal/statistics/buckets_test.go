package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/minimart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/minimart-backend/pkg/errors"
)

func TestBucketStart(t *testing.T) {
	// 2026-03-05 is a Thursday.
	ts := time.Date(2026, 3, 5, 17, 30, 0, 0, time.UTC)

	require.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), bucketStart(ts, enums.StatsPeriodDay))
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), bucketStart(ts, enums.StatsPeriodWeek))
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), bucketStart(ts, enums.StatsPeriodMonth))

	sunday := time.Date(2026, 3, 8, 23, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), bucketStart(sunday, enums.StatsPeriodWeek))
}

func TestRangeNormalize(t *testing.T) {
	now := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

	r, err := Range{}.normalize(now)
	require.NoError(t, err)
	require.Equal(t, enums.StatsPeriodDay, r.Period)
	require.Len(t, bucketKeys(r), 30)

	_, err = Range{Period: "hour"}.normalize(now)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = Range{From: now, To: now.AddDate(0, 0, -1)}.normalize(now)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = Range{From: now.AddDate(-2, 0, 0), To: now}.normalize(now)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	r, err = Range{Period: enums.StatsPeriodMonth, From: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), To: now}.normalize(now)
	require.NoError(t, err)
	keys := bucketKeys(r)
	require.Len(t, keys, 6)
	require.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), keys[0])
}
