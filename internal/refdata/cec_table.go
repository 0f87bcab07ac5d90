// Package refdata loads the soil reference tables shipped alongside the
// service, currently the per-texture cation exchange capacity table.
package refdata

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/terralytics/limeplan/internal/logger"
)

// DefaultCEC is used when a texture cannot be resolved at all.
const DefaultCEC = 15.0

// keywordFallback pairs a texture keyword with the CEC assumed when the
// table has no entry for it. Checked in the listed order with substring
// matches. Note "clay loam" precedes "sandy clay loam", so the latter's
// fallback row is shadowed; the ordering is kept as-is because it is
// what existing prescriptions were computed with.
type keywordFallback struct {
	keyword string
	cec     float64
}

var keywordFallbacks = []keywordFallback{
	{"organic", 100},
	{"clay loam", 25},
	{"sandy clay loam", 30},
	{"silty clay", 30},
	{"sandy clay", 20},
	{"clay", 40},
	{"sandy loam", 10},
	{"sandy silt loam", 20},
	{"silt loam", 20},
	{"loamy sand", 15},
	{"silt", 15},
	{"sand", 5},
}

// ExchangeCapacityTable maps soil texture names to cation exchange
// capacity in meq/100g. Lookups are case-insensitive and fall back to
// keyword matching so that vendor-specific texture spellings still
// resolve to a usable value.
type ExchangeCapacityTable struct {
	byName map[string]float64
}

// LoadExchangeCapacityTable reads a two-column CSV (Soil,CEC) from
// path. A missing or unreadable file is not fatal: the service degrades
// to keyword fallbacks, so the error is logged and an empty table
// returned.
func LoadExchangeCapacityTable(path string, log *logger.Logger) *ExchangeCapacityTable {
	table := &ExchangeCapacityTable{byName: make(map[string]float64)}

	f, err := os.Open(path)
	if err != nil {
		if log != nil {
			log.Warn("CEC table unavailable, using keyword fallbacks", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return table
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		if log != nil {
			log.Warn("failed to parse CEC table, using keyword fallbacks", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
		}
		return table
	}

	for i, record := range records {
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		value := strings.TrimSpace(record[1])
		if i == 0 && strings.EqualFold(name, "soil") {
			continue
		}
		cec, err := strconv.ParseFloat(value, 64)
		if err != nil {
			if log != nil {
				log.Warn("skipping malformed CEC table row", map[string]interface{}{
					"path": path,
					"row":  fmt.Sprintf("%v", record),
				})
			}
			continue
		}
		table.byName[strings.ToLower(name)] = cec
	}

	if log != nil {
		log.Info("loaded CEC table", map[string]interface{}{
			"path":    path,
			"entries": len(table.byName),
		})
	}
	return table
}

// NewExchangeCapacityTable builds a table from an in-memory mapping,
// mainly for tests.
func NewExchangeCapacityTable(entries map[string]float64) *ExchangeCapacityTable {
	byName := make(map[string]float64, len(entries))
	for name, cec := range entries {
		byName[strings.ToLower(strings.TrimSpace(name))] = cec
	}
	return &ExchangeCapacityTable{byName: byName}
}

// Lookup resolves a texture name to a CEC value: exact case-insensitive
// match first, then the keyword fallbacks (preferring a table entry for
// the keyword itself over its hardcoded default), and finally
// DefaultCEC.
func (t *ExchangeCapacityTable) Lookup(textureName string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(textureName))
	if cec, ok := t.byName[normalized]; ok {
		return cec
	}

	for _, fb := range keywordFallbacks {
		if !strings.Contains(normalized, fb.keyword) {
			continue
		}
		if cec, ok := t.byName[fb.keyword]; ok {
			return cec
		}
		return fb.cec
	}

	return DefaultCEC
}

// LookupMapped resolves a texture that has already been normalized to a
// canonical class name. The mapped class is tried against the table
// first; if the table does not know it, the original spelling runs
// through the full Lookup chain.
func (t *ExchangeCapacityTable) LookupMapped(mapped, raw string) float64 {
	if cec, ok := t.byName[strings.ToLower(strings.TrimSpace(mapped))]; ok {
		return cec
	}
	return t.Lookup(raw)
}

// Len reports how many entries were loaded from the CSV.
func (t *ExchangeCapacityTable) Len() int {
	return len(t.byName)
}
