package core

import (
	"fmt"
	"regexp"
	"strings"
)

// SQLParser rewrites named parameters {var} into driver bind markers
type SQLParser struct {
	regex *regexp.Regexp
}

func NewSQLParser() *SQLParser {
	// Matches {varname} where varname is alphanumeric
	return &SQLParser{
		regex: regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`),
	}
}

// ParseResult contains the transformed SQL and the list of parameter names in order
type ParseResult struct {
	SQL        string
	ParamNames []string
}

// Parse replaces every {var} with the bind marker of the given database/sql driver.
// Postgres drivers use $n, everything else (ODBC included) uses ?.
func (p *SQLParser) Parse(sqlText, sqlDriver string) *ParseResult {
	paramNames := []string{}

	transformedSQL := p.regex.ReplaceAllStringFunc(sqlText, func(match string) string {
		paramName := match[1 : len(match)-1]
		paramNames = append(paramNames, paramName)
		return bindMarker(sqlDriver, len(paramNames))
	})

	return &ParseResult{
		SQL:        transformedSQL,
		ParamNames: paramNames,
	}
}

// Bind rewrites the placeholders of sqlText and orders values to match.
// Without values the text goes to the driver as written, so literal braces
// (JSON, ODBC escapes) survive.
func (p *SQLParser) Bind(sqlText, sqlDriver string, values map[string]interface{}) (string, []interface{}, error) {
	if len(values) == 0 {
		return sqlText, nil, nil
	}

	parsed := p.Parse(sqlText, sqlDriver)
	args := make([]interface{}, 0, len(parsed.ParamNames))
	var missing []string
	for _, name := range parsed.ParamNames {
		v, ok := values[name]
		if !ok {
			missing = append(missing, name)
		}
		args = append(args, v)
	}
	if len(missing) > 0 {
		return "", nil, &ConfigError{Key: "params", Missing: missing, Msg: "query parameters have no value"}
	}
	if len(args) == 0 {
		return sqlText, nil, nil
	}
	return parsed.SQL, args, nil
}

func bindMarker(sqlDriver string, position int) string {
	switch strings.ToLower(sqlDriver) {
	case "postgres", "pgx":
		return fmt.Sprintf("$%d", position)
	case "sqlserver", "mssql":
		return fmt.Sprintf("@p%d", position)
	default:
		return "?"
	}
}
