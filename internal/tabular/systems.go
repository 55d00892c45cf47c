package tabular

import (
	"errors"
	"io"

	"github.com/solarlab/pvcompare/schema"
)

// ReadSystems loads System Records from a metadata CSV.
func ReadSystems(path string) ([]schema.SystemRecord, error) {
	t, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSystems(t)
}

// ParseSystems decodes System Records from a CSV stream.
func ParseSystems(name string, r io.Reader) ([]schema.SystemRecord, error) {
	t, err := load(name, r)
	if err != nil {
		return nil, err
	}
	return parseSystems(t)
}

func parseSystems(t *table) ([]schema.SystemRecord, error) {
	idCol, err := t.require("id")
	if err != nil {
		return nil, err
	}
	azCol, err := t.require("azimuth")
	if err != nil {
		return nil, err
	}
	tiltCol, err := t.require("tilt")
	if err != nil {
		return nil, err
	}
	capCol, err := t.require("capacity", "estimated_dc_capacity", "dc_capacity")
	if err != nil {
		return nil, err
	}

	systems := make([]schema.SystemRecord, 0, len(t.rows))
	for row := range t.rows {
		rec := schema.SystemRecord{ID: t.cell(row, idCol)}
		if rec.ID == "" {
			return nil, t.fail(row, t.columns[idCol], errors.New("empty id"))
		}
		if rec.Azimuth, err = t.float(row, azCol); err != nil {
			return nil, err
		}
		if rec.Tilt, err = t.float(row, tiltCol); err != nil {
			return nil, err
		}
		if rec.Capacity, err = t.float(row, capCol); err != nil {
			return nil, err
		}
		if rec.Capacity <= 0 {
			return nil, t.fail(row, t.columns[capCol], errors.New("capacity must be positive"))
		}
		systems = append(systems, rec)
	}
	return systems, nil
}
