package vcstore

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"
)

// second precision, always UTC
const LastVisitFormat = "2006-01-02T15:04:05Z"

func FormatLastVisit(ts time.Time) string {
	return ts.UTC().Format(LastVisitFormat)
}

func ParseLastVisit(serialized string) (time.Time, error) {
	return time.Parse(LastVisitFormat, serialized)
}

var (
	maxCount = new(big.Float).SetInt64(math.MaxInt64)
	minCount = new(big.Float).SetInt64(math.MinInt64)
)

// DynamoDB numbers are arbitrary-precision decimals on the wire ("42", "42.0", "4.2E1").
// counts are integers, so we normalize everything down to int64. exact is false if a
// fraction was truncated away.
func parseCount(number string) (count int64, exact bool, err error) {
	if count, err := strconv.ParseInt(number, 10, 64); err == nil {
		return count, true, nil
	}

	decimal, _, err := big.ParseFloat(number, 10, 128, big.ToZero)
	if err != nil {
		return 0, false, fmt.Errorf("count not a number: %s", number)
	}

	if decimal.IsInf() || decimal.Cmp(maxCount) > 0 || decimal.Cmp(minCount) < 0 {
		return 0, false, fmt.Errorf("count out of range: %s", number)
	}

	count, _ = decimal.Int64()

	return count, decimal.IsInt(), nil
}
