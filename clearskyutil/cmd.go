/*
Copyright © 2018 the clearsky authors.
This file is part of clearsky.

clearsky is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

clearsky is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with clearsky.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package clearskyutil contains the command-line interface and
// configuration handling for clearsky.
package clearskyutil

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/clearsky"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

type option struct {
	name, usage string
	defaultVal  interface{}
	flagsets    []*pflag.FlagSet
}

var options []option

func init() {
	// Options are the configuration options available to clearsky.
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Stations",
			usage: `
              Stations specifies the station locations as a JSON list of
              [latitude, longitude, elevation] triples in degrees and meters,
              for example '[[40.0, -105.25, 1655], [-33.9, 18.4, 10]]'.
              Elevation may be omitted, in which case it is 0. Stations is
              ignored if StationFile is specified.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StationFile",
			usage: `
              StationFile specifies the path to a point shapefile holding
              station locations in geographic (longitude, latitude) coordinates.
              It can include environment variables, can be an http or
              blob storage (gs://, s3://, or file://) location, and can be
              gzip-compressed with a .gz extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StationElevationColumn",
			usage: `
              StationElevationColumn specifies the attribute in StationFile
              holding station elevation [m]. If it is empty, station elevation
              is 0.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StartTime",
			usage: `
              StartTime specifies the first time for which to calculate
              irradiance, in UTC, for example '2018-01-01 00:00'.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "EndTime",
			usage: `
              EndTime specifies the last time (inclusive) for which to
              calculate irradiance, in UTC.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TimeStep",
			usage: `
              TimeStep specifies the interval between calculation times,
              for example '1h' or '15m'.`,
			defaultVal: "1h",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MERRA2.Dir",
			usage: `
              MERRA2.Dir specifies a directory to search for MERRA2 files.
              All files whose names include 'MERRA2' are used, and the file
              whose name includes 'const_2d_asm' is used for time-invariant
              variables. MERRA2.Dir is ignored if MERRA2.Files is specified.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MERRA2.Files",
			usage: `
              MERRA2.Files specifies a list of MERRA2 files in NetCDF classic
              format. Each can include environment variables, can be an http or
              blob storage location, can be gzip-compressed with a .gz
              extension, and can include the tag [DATE], which will be
              replaced by each day between StartTime and EndTime formatted
              using MERRA2.DateFormat.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MERRA2.DateFormat",
			usage: `
              MERRA2.DateFormat specifies the format of [DATE] tags in
              MERRA2.Files, as a Go time layout.`,
			defaultVal: "20060102",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MERRA2.ConstFile",
			usage: `
              MERRA2.ConstFile specifies the MERRA2 const_2d_asm_Nx file
              holding surface geopotential. It is required if MERRA2.Files
              is specified.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Interpolate",
			usage: `
              Interpolate specifies whether MERRA2 data should be linearly
              interpolated in space and time. If false, the nearest grid
              cell and record are used.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Components",
			usage: `
              Components specifies which irradiance components to calculate:
              1 for direct normal irradiance (DNI); 2 for DNI and diffuse
              horizontal irradiance (DHI); and 3 for DNI, DHI, and global
              horizontal irradiance (GHI).`,
			defaultVal: int(clearsky.AllComponents),
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Albedo",
			usage: `
              Albedo specifies a fixed ground albedo between 0 and 1. If it is
              less than zero, the MERRA2 surface albedo is used instead.`,
			defaultVal: -1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ScaleHeight",
			usage: `
              ScaleHeight specifies the scale height [m] used to correct
              aerosol optical depth and water vapor from the MERRA2 surface
              height to the station elevation.`,
			defaultVal: clearsky.ScaleHeight,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the desired output NetCDF file
              location. It can include environment variables and can be a
              blob storage location.`,
			defaultVal: "clearsky_output.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be included
              in the output file. It can include environment variables. Each
              output variable is an expression of the model variables GHI, DNI,
              DHI, Zenith, EarthRadius, AOD550, Alpha, Beta, WaterVapor, Pressure,
              Albedo, and Ozone, and the functions exp, cosd, max, and min.
              If it is left empty, the irradiance components selected by
              Components are output.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the desired logfile location. It
              can include environment variables. If LogFile is left blank, the
              logfile will be saved in the same location as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the level of detail of log messages:
              one of 'debug', 'info', 'warning', or 'error'.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("CLEARSKY")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, o := range options {
		set := o.flagsets[0]
		addFlag(set, o.name, o.usage, o.defaultVal)
		for _, other := range o.flagsets[1:] {
			other.AddFlag(set.Lookup(o.name))
		}
		Cfg.BindPFlag(o.name, set.Lookup(o.name))
	}
}

// addFlag adds a flag of the type of defaultVal to set. Map values
// are given on the command line as JSON strings.
func addFlag(set *pflag.FlagSet, name, usage string, defaultVal interface{}) {
	switch v := defaultVal.(type) {
	case string:
		set.String(name, v, usage)
	case []string:
		set.StringSlice(name, v, usage)
	case bool:
		set.Bool(name, v, usage)
	case int:
		set.Int(name, v, usage)
	case float64:
		set.Float64(name, v, usage)
	case map[string]string:
		b, err := json.Marshal(v)
		if err != nil {
			panic(err)
		}
		set.String(name, string(b), usage)
	default:
		panic(fmt.Errorf("clearsky: invalid type %T for option %s", defaultVal, name))
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("clearsky: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "clearsky",
	Short: "A clear-sky solar irradiance model.",
	Long: `clearsky calculates clear-sky direct normal, diffuse horizontal, and
global horizontal solar irradiance at a set of stations using the MAC2 model
and MERRA2 reanalysis data. Use the subcommands specified below to access the
model functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'CLEARSKY_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'. Many configuration
variables are additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of clearsky.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("clearsky v%s\n", clearsky.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that calculates clear-sky irradiance.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Calculate clear-sky irradiance.",
	Long: `run calculates clear-sky irradiance at the configured stations and
times and saves the results to a NetCDF file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(context.Background(), cmd.OutOrStdout(), Cfg)
	},
	DisableAutoGenTag: true,
}
