package reportcache

import (
	"strconv"
	"strings"

	"github.com/joshsymonds/tally/internal/service"
)

// FilterSignature serializes a transaction filter into a stable cache key
// component. Field order is fixed and unset fields render as "-", so two
// structurally identical filters always hit the same key.
func FilterSignature(filter service.TransactionFilter) string {
	var sb strings.Builder

	sb.WriteString("start=")
	if filter.StartDate != nil {
		sb.WriteString(filter.StartDate.Format("2006-01-02"))
	} else {
		sb.WriteString("-")
	}

	sb.WriteString(";end=")
	if filter.EndDate != nil {
		sb.WriteString(filter.EndDate.Format("2006-01-02"))
	} else {
		sb.WriteString("-")
	}

	sb.WriteString(";account=")
	if filter.AccountID != nil {
		sb.WriteString(strconv.FormatInt(*filter.AccountID, 10))
	} else {
		sb.WriteString("-")
	}

	sb.WriteString(";category=")
	if filter.CategoryID != nil {
		sb.WriteString(strconv.FormatInt(*filter.CategoryID, 10))
	} else {
		sb.WriteString("-")
	}

	sb.WriteString(";type=")
	if filter.Type != "" {
		sb.WriteString(string(filter.Type))
	} else {
		sb.WriteString("-")
	}

	sb.WriteString(";limit=")
	sb.WriteString(strconv.Itoa(filter.Limit))
	sb.WriteString(";offset=")
	sb.WriteString(strconv.Itoa(filter.Offset))

	return sb.String()
}
