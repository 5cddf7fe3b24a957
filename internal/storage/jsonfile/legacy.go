package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/ridesplit/internal/models"
)

// LegacyConfigFile is read from the data file's directory when the data file
// uses the per-companion layout.
const LegacyConfigFile = "config.json"

// legacySection is one companion's entry in the per-companion layout:
//
//	{"MOI": {"viajes": {"2025-01-06": {"ida": true, "vuelta": false}}, "pagos": [...], "saldo": 10}}
//
// saldo is ignored; balances are always recomputed from pagos.
type legacySection struct {
	Viajes map[string]legacyTrip `json:"viajes"`
	Pagos  []legacyPayment       `json:"pagos"`
}

type legacyTrip struct {
	Ida    bool `json:"ida"`
	Vuelta bool `json:"vuelta"`
}

type legacyPayment struct {
	ID       string      `json:"id"`
	Cantidad json.Number `json:"cantidad"`
	Fecha    string      `json:"fecha"`
	Nota     string      `json:"nota"`
}

type legacyConfig struct {
	Companions []struct {
		ID     string `json:"id"`
		Nombre string `json:"nombre"`
	} `json:"compañeros"`
}

// isLegacy reports whether data is the per-companion layout: a top-level object
// with none of the document keys.
func isLegacy(data []byte) bool {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return false
	}
	for _, key := range []string{"companions", "trips", "payments"} {
		if _, ok := top[key]; ok {
			return false
		}
	}
	return len(top) > 0
}

// decodeLegacy converts the per-companion layout into a document. Companion
// names and order come from config when it is non-nil; companions found only in
// the data file follow in id order, named after their id.
func decodeLegacy(data, config []byte, now time.Time) (*document, error) {
	sections := make(map[string]legacySection)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&sections); err != nil {
		return nil, fmt.Errorf("failed to parse legacy ledger: %w", err)
	}

	var cfg legacyConfig
	if config != nil {
		if err := json.Unmarshal(config, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse legacy config: %w", err)
		}
	}

	doc := newDocument()
	created := now.Unix()
	seen := make(map[string]bool)
	addCompanion := func(id, name string) {
		if id == "" || seen[id] {
			return
		}
		if name == "" {
			name = id
		}
		seen[id] = true
		doc.Companions = append(doc.Companions, models.Companion{ID: id, Name: name, CreatedAt: created})
		created++
	}

	for _, c := range cfg.Companions {
		addCompanion(c.ID, c.Nombre)
	}
	ids := make([]string, 0, len(sections))
	for id := range sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		addCompanion(id, "")
	}

	for _, id := range ids {
		section := sections[id]

		dates := make([]string, 0, len(section.Viajes))
		for date := range section.Viajes {
			dates = append(dates, date)
		}
		sort.Strings(dates)
		for _, date := range dates {
			if _, err := time.Parse(models.DateLayout, date); err != nil {
				return nil, fmt.Errorf("companion %s: invalid trip date %q", id, date)
			}
			legs := section.Viajes[date]
			doc.Trips = append(doc.Trips, models.Trip{
				CompanionID: id,
				Date:        date,
				Outbound:    legs.Ida,
				Return:      legs.Vuelta,
			})
		}

		for i, p := range section.Pagos {
			if p.ID == "" {
				return nil, fmt.Errorf("companion %s: payment %d has no id", id, i)
			}
			if _, dup := doc.Payments[p.ID]; dup {
				return nil, fmt.Errorf("payment %s appears twice", p.ID)
			}
			amount, err := decimal.NewFromString(p.Cantidad.String())
			if err != nil {
				return nil, fmt.Errorf("payment %s: invalid amount %q", p.ID, p.Cantidad)
			}
			date, err := parseLegacyDate(p.Fecha)
			if err != nil {
				return nil, fmt.Errorf("payment %s: %w", p.ID, err)
			}
			doc.Payments[p.ID] = models.Payment{
				ID:          p.ID,
				CompanionID: id,
				Amount:      amount,
				Date:        date,
				Note:        p.Nota,
				CreatedAt:   now.Unix(),
			}
		}
	}
	return doc, nil
}

func parseLegacyDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid payment date %q", s)
}

// readLegacyConfig returns the companion list stored next to path, or nil
// when there is none.
func readLegacyConfig(path string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), LegacyConfigFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy config: %w", err)
	}
	return data, nil
}
