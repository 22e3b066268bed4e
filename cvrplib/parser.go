// Package cvrplib parses the CVRPLIB/TSPLIB instance-file subset the solver
// accepts: a keyword/value header followed by NODE_COORD_SECTION,
// DEMAND_SECTION and DEPOT_SECTION.
package cvrplib

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	hgs "github.com/vidalt/HGS-CVRP"
)

// Instance is the parsed content of a CVRPLIB file, ready to feed
// hgs.NewParamsFromCoords.
type Instance struct {
	Name          string
	Dimension     int // includes the depot
	Capacity      float64
	DurationLimit float64 // 0 when the DISTANCE keyword was absent
	Clients       []hgs.Client
}

// recognisedKeywords is the exhaustive header-keyword set; anything else is
// a fatal parse error, per the CLI's input contract.
var recognisedKeywords = map[string]bool{
	"NAME":            true,
	"TYPE":            true,
	"COMMENT":         true,
	"DIMENSION":       true,
	"EDGE_WEIGHT_TYPE": true,
	"CAPACITY":        true,
	"DISTANCE":        true,
	"SERVICE_TIME":    true,
}

// ParseFile reads a CVRPLIB instance from path.
func ParseFile(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", hgs.ErrIO, path, err)
	}
	defer f.Close()
	return Parse(bufio.NewReader(f))
}

// Parse reads a CVRPLIB instance from r.
func Parse(r *bufio.Reader) (*Instance, error) {
	inst := &Instance{}
	serviceTime := 0.0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	section := ""
	var coords map[int][2]float64
	var demands map[int]float64
	depotSeen := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "EOF" {
			break
		}

		switch section {
		case "NODE_COORD_SECTION":
			if line == "DEMAND_SECTION" {
				section = line
				continue
			}
			id, x, y, err := parseIDXY(line)
			if err != nil {
				return nil, err
			}
			coords[id] = [2]float64{x, y}
			continue
		case "DEMAND_SECTION":
			if line == "DEPOT_SECTION" {
				section = line
				continue
			}
			id, d, err := parseIDDemand(line)
			if err != nil {
				return nil, err
			}
			demands[id] = d
			continue
		case "DEPOT_SECTION":
			if line == "-1" {
				continue
			}
			id, err := strconv.Atoi(line)
			if err != nil {
				return nil, fmt.Errorf("%w: malformed depot id %q", hgs.ErrParse, line)
			}
			if id != 1 {
				return nil, fmt.Errorf("%w: depot id must be 1, got %d", hgs.ErrParse, id)
			}
			depotSeen = true
			continue
		}

		switch {
		case line == "NODE_COORD_SECTION":
			coords = make(map[int][2]float64)
			section = line
		case line == "DEMAND_SECTION":
			demands = make(map[int]float64)
			section = line
		case line == "DEPOT_SECTION":
			section = line
		default:
			key, value, ok := splitKeyword(line)
			if !ok {
				return nil, fmt.Errorf("%w: malformed header line %q", hgs.ErrParse, line)
			}
			if !recognisedKeywords[key] {
				return nil, fmt.Errorf("%w: unrecognised keyword %q", hgs.ErrParse, key)
			}
			switch key {
			case "NAME":
				inst.Name = value
			case "DIMENSION":
				n, err := strconv.Atoi(value)
				if err != nil {
					return nil, fmt.Errorf("%w: bad DIMENSION value %q", hgs.ErrParse, value)
				}
				inst.Dimension = n
			case "CAPACITY":
				cap, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: bad CAPACITY value %q", hgs.ErrParse, value)
				}
				inst.Capacity = cap
			case "DISTANCE":
				d, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: bad DISTANCE value %q", hgs.ErrParse, value)
				}
				inst.DurationLimit = d
			case "SERVICE_TIME":
				st, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: bad SERVICE_TIME value %q", hgs.ErrParse, value)
				}
				serviceTime = st
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", hgs.ErrIO, err)
	}

	if inst.Dimension <= 0 {
		return nil, fmt.Errorf("%w: missing DIMENSION", hgs.ErrParse)
	}
	if coords == nil {
		return nil, fmt.Errorf("%w: missing NODE_COORD_SECTION", hgs.ErrParse)
	}
	if demands == nil {
		return nil, fmt.Errorf("%w: missing DEMAND_SECTION", hgs.ErrParse)
	}
	if !depotSeen {
		return nil, fmt.Errorf("%w: missing DEPOT_SECTION", hgs.ErrParse)
	}

	inst.Clients = make([]hgs.Client, inst.Dimension)
	for id := 1; id <= inst.Dimension; id++ {
		c, ok := coords[id]
		if !ok {
			return nil, fmt.Errorf("%w: node %d missing from NODE_COORD_SECTION", hgs.ErrParse, id)
		}
		d, ok := demands[id]
		if !ok {
			return nil, fmt.Errorf("%w: node %d missing from DEMAND_SECTION", hgs.ErrParse, id)
		}
		inst.Clients[id-1] = hgs.Client{
			ID:              id - 1,
			X:               c[0],
			Y:               c[1],
			Demand:          d,
			ServiceDuration: serviceTime,
		}
	}
	inst.Clients[0].ServiceDuration = 0
	inst.Clients[0].Demand = 0

	return inst, nil
}

func parseIDXY(line string) (int, float64, float64, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: malformed node line %q", hgs.ErrParse, line)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: malformed node id %q", hgs.ErrParse, fields[0])
	}
	x, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: malformed x coordinate %q", hgs.ErrParse, fields[1])
	}
	y, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: malformed y coordinate %q", hgs.ErrParse, fields[2])
	}
	return id, x, y, nil
}

func parseIDDemand(line string) (int, float64, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: malformed demand line %q", hgs.ErrParse, line)
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: malformed node id %q", hgs.ErrParse, fields[0])
	}
	d, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: malformed demand %q", hgs.ErrParse, fields[1])
	}
	return id, d, nil
}

func splitKeyword(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	return key, value, true
}
