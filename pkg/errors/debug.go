package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

type constraintRule struct {
	code    Code
	message string
}

// constraintRules maps schema constraints to the error a caller should see
// when a write trips them. Names match the migrations.
var constraintRules = map[string]constraintRule{
	"items_stock_number_check":        {CodeOutOfStock, "insufficient stock"},
	"items_price_check":               {CodeValidation, "price must not be negative"},
	"items_sale_percent_check":        {CodeValidation, "sale percent must be between 0 and 100"},
	"items_status_check":              {CodeValidation, "invalid item status"},
	"cart_items_user_item_option_key": {CodeConflict, "item option already in cart"},
	"cart_items_count_check":          {CodeValidation, "count must be positive"},
	"order_items_count_check":         {CodeValidation, "count must be positive"},
	"orders_status_check":             {CodeStateConflict, "invalid order status"},
	"users_email_key":                 {CodeConflict, "email already registered"},
	"sellers_user_id_key":             {CodeConflict, "seller application already exists"},
	"sellers_name_key":                {CodeConflict, "seller name already taken"},
	"follows_buyer_seller_key":        {CodeConflict, "already following seller"},
	"item_reviews_rating_check":       {CodeValidation, "rating must be between 0 and 5"},
}

// sqlite names CHECK constraints in the message only.
const sqliteCheckPrefix = "CHECK constraint failed: "

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode = pgxErr.Code
		d.PGConstraint = pgxErr.ConstraintName
		d.PGTable = pgxErr.TableName
		d.PGColumn = pgxErr.ColumnName
		d.PGDetail = pgxErr.Detail
		d.PGMessage = pgxErr.Message
		return d
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode = string(pqErr.Code)
		d.PGConstraint = pqErr.Constraint
		d.PGTable = pqErr.Table
		d.PGColumn = pqErr.Column
		d.PGDetail = pqErr.Detail
		d.PGMessage = pqErr.Message
		return d
	}

	d.PGConstraint = sqliteConstraint(err.Error())
	return d
}

// FromConstraint converts a constraint violation into its typed error. It
// returns nil when err does not name a known constraint.
func FromConstraint(err error) *Error {
	if err == nil {
		return nil
	}
	rule, ok := constraintRules[Dump(err).PGConstraint]
	if !ok {
		return nil
	}
	return Wrap(rule.code, err, rule.message)
}

func sqliteConstraint(msg string) string {
	i := strings.Index(msg, sqliteCheckPrefix)
	if i < 0 {
		return ""
	}
	name := msg[i+len(sqliteCheckPrefix):]
	if end := strings.IndexAny(name, " ,;)"); end >= 0 {
		name = name[:end]
	}
	return name
}
