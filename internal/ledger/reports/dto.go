package reports

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// seriesQuery carries the parsed parameters of a balance series request.
type seriesQuery struct {
	Accounts []int64   `validate:"required,min=1,dive,gt=0"`
	Start    time.Time `validate:"required"`
	End      time.Time `validate:"required"`
}

// expenseQuery extends seriesQuery with grouping options.
type expenseQuery struct {
	seriesQuery
	Group   ExpenseGroup `validate:"oneof=category tag"`
	Monthly bool
}

func parseSeriesQuery(r *http.Request) (seriesQuery, error) {
	q := seriesQuery{}
	ids, err := parseIDList(r.URL.Query().Get("accounts"))
	if err != nil {
		return q, err
	}
	q.Accounts = ids
	if q.Start, err = parseDate(r.URL.Query().Get("start")); err != nil {
		return q, err
	}
	if q.End, err = parseDate(r.URL.Query().Get("end")); err != nil {
		return q, err
	}
	return q, validate.Struct(q)
}

func parseExpenseQuery(r *http.Request) (expenseQuery, error) {
	series, err := parseSeriesQuery(r)
	if err != nil {
		return expenseQuery{}, err
	}
	q := expenseQuery{seriesQuery: series, Group: GroupByCategory}
	if v := r.URL.Query().Get("group_by"); v != "" {
		q.Group = ExpenseGroup(v)
	}
	q.Monthly = r.URL.Query().Get("monthly") == "true"
	return q, validate.Struct(q)
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, raw)
}

// cacheKeyOf builds the singleflight key for a series request.
func (q seriesQuery) cacheKeyOf(kind string) string {
	return strings.Join([]string{
		kind,
		formatIDs(q.Accounts),
		q.Start.Format(time.DateOnly),
		q.End.Format(time.DateOnly),
	}, ":")
}
