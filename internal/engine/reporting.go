package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/PortBackRank/PortBackRank/types"
)

// SortResults orders rows by total return, best first, with the parameter
// echo as a deterministic tie-breaker.
func SortResults(rows []types.ResultRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].TotalReturn.Equal(rows[j].TotalReturn) {
			return rows[i].TotalReturn.GreaterThan(rows[j].TotalReturn)
		}
		return paramsKey(rows[i]) < paramsKey(rows[j])
	})
}

// WriteResultsCSVFile writes the result table to a CSV file at the given path.
func WriteResultsCSVFile(path string, rows []types.ResultRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	defer f.Close()

	return WriteResultsCSV(f, rows)
}

// WriteResultsCSV writes one row per simulation to any io.Writer as CSV.
// Parameter columns come first (sorted by name), then the three metrics.
func WriteResultsCSV(w io.Writer, rows []types.ResultRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	paramNames := collectParamNames(rows)
	header := append(append([]string{}, paramNames...),
		"final_cash", "portfolio_value", "total_return")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range rows {
		record := make([]string, 0, len(header))
		for _, name := range paramNames {
			value, ok := row.RiskParams[name]
			if !ok {
				value = row.StrategyParams[name]
			}
			record = append(record, strconv.FormatFloat(value, 'g', -1, 64))
		}
		record = append(record,
			row.FinalCash.String(),
			row.PortfolioValue.String(),
			row.TotalReturn.String(),
		)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func collectParamNames(rows []types.ResultRow) []string {
	seen := make(map[string]bool)
	var names []string
	for _, row := range rows {
		for name := range row.RiskParams {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		for name := range row.StrategyParams {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

func paramsKey(row types.ResultRow) string {
	names := collectParamNames([]types.ResultRow{row})
	key := ""
	for _, name := range names {
		value, ok := row.RiskParams[name]
		if !ok {
			value = row.StrategyParams[name]
		}
		key += name + "=" + strconv.FormatFloat(value, 'g', -1, 64) + ";"
	}
	return key
}
