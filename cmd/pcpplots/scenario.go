package main

import (
	"fmt"
	"time"

	"github.com/cachemcclure/astrora"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/spf13/viper"
)

const dateTimeFormat = "2006-01-02 15:04:05"

// scenario is a porkchop plot definition read from a TOML file.
type scenario struct {
	Prefix    string
	OutputDir string
	Porkchop  astrora.PorkchopConfig
	Lambert   astrora.Config
}

// loadScenario reads the scenario file. Dates are either Julian dates or "2006-01-02 15:04:05"
// UTC strings, and resolutions are in points per day.
func loadScenario(path string) (scenario, error) {
	var sc scenario
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return sc, fmt.Errorf("could not read scenario %s: %w", path, err)
	}
	v.SetDefault("general.output_path", ".")
	sc.Prefix = v.GetString("general.fileprefix")
	if sc.Prefix == "" {
		return sc, fmt.Errorf("general.fileprefix is missing in %s", path)
	}
	sc.OutputDir = v.GetString("general.output_path")

	var err error
	pcp := &sc.Porkchop
	for _, leg := range []struct {
		section     string
		body        *astrora.CelestialObject
		from, until *time.Time
		step        *time.Duration
	}{
		{"departure", &pcp.Departure, &pcp.LaunchFrom, &pcp.LaunchUntil, &pcp.LaunchStep},
		{"arrival", &pcp.Arrival, &pcp.ArrivalFrom, &pcp.ArrivalUntil, &pcp.ArrivalStep},
	} {
		if *leg.body, err = astrora.CelestialObjectFromString(v.GetString(leg.section + ".planet")); err != nil {
			return sc, err
		}
		if *leg.from, err = confReadJDEorTime(v, leg.section+".from"); err != nil {
			return sc, err
		}
		if *leg.until, err = confReadJDEorTime(v, leg.section+".until"); err != nil {
			return sc, err
		}
		v.SetDefault(leg.section+".resolution", 1.0)
		reso := v.GetFloat64(leg.section + ".resolution")
		if !(reso > 0) {
			return sc, fmt.Errorf("%s.resolution must be positive", leg.section)
		}
		*leg.step = time.Duration(24 * float64(time.Hour) / reso)
	}
	if pcp.Kind, err = astrora.ParseTransferKind(v.GetString("lambert.kind")); err != nil {
		return sc, err
	}
	revs := v.GetInt("lambert.revs")
	if revs < 0 {
		return sc, fmt.Errorf("lambert.revs must be >= 0, got %d", revs)
	}
	pcp.Revs = uint32(revs)
	if sc.Lambert, err = astrora.ConfigFromViper(v); err != nil {
		return sc, err
	}
	return sc, pcp.Validate()
}

func confReadJDEorTime(v *viper.Viper, key string) (dt time.Time, err error) {
	if !v.IsSet(key) {
		return dt, fmt.Errorf("%s is missing", key)
	}
	jde := v.GetFloat64(key)
	if jde == 0 {
		dt, err = time.Parse(dateTimeFormat, v.GetString(key))
		if err != nil {
			return dt, fmt.Errorf("could not understand `%s`: %w", key, err)
		}
		return dt, nil
	}
	return julian.JDToTime(jde), nil
}
