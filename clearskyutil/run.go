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

package clearskyutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/clearsky"
	"github.com/spatialmodel/clearsky/merra2"
)

// newLogger returns a logger that writes to w at the given level.
func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("clearsky: invalid LogLevel: %v", err)
	}
	log := logrus.New()
	log.Out = w
	log.Level = lvl
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	}
	return log, nil
}

// Run calculates clear-sky irradiance using the configuration in cfg
// and writes the results to the configured OutputFile.
// Log messages are written to w and to the configured LogFile.
func Run(ctx context.Context, w io.Writer, cfg *viper.Viper) error {
	startTime := time.Now()

	outputFile, err := checkOutputFile(ctx, cfg.GetString("OutputFile"))
	if err != nil {
		return err
	}
	vars, err := GetStringMapString("OutputVariables", cfg)
	if err != nil {
		return err
	}
	if len(vars) == 0 {
		vars = clearsky.DefaultOutputVariables(clearsky.Components(cfg.GetInt("Components")))
	}
	outputVars, err := checkOutputVars(vars)
	if err != nil {
		return err
	}
	o, err := clearsky.NewOutputter(outputVars, nil)
	if err != nil {
		return err
	}

	var upload uploader
	logfile, err := os.Create(upload.maybeUpload(checkLogFile(cfg.GetString("LogFile"), outputFile)))
	if err != nil {
		return fmt.Errorf("clearsky: problem creating log file: %v", err)
	}
	log, err := newLogger(io.MultiWriter(w, logfile), cfg.GetString("LogLevel"))
	if err != nil {
		logfile.Close()
		return err
	}

	err = run(ctx, cfg, log, o, upload.maybeUpload(outputFile))
	if err != nil {
		log.WithError(err).Error("clearsky: calculation failed")
	} else {
		log.WithField("duration", time.Since(startTime)).Info("clearsky: calculation complete")
	}
	if cerr := logfile.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	// The logger is no longer writing to the log file,
	// so further messages only go to w.
	log.Out = w
	return upload.uploadOutput(ctx, log)
}

func run(ctx context.Context, cfg *viper.Viper, log *logrus.Logger, o *clearsky.Outputter, outputFile string) error {
	times, err := timeConfig(cfg)
	if err != nil {
		return err
	}
	s, err := stationConfig(ctx, cfg, log)
	if err != nil {
		return err
	}
	files, constFile, err := merra2Config(ctx, cfg, times[0], times[len(times)-1], log)
	if err != nil {
		return err
	}
	data, err := merra2.NewReader(files, constFile, 0, log)
	if err != nil {
		return err
	}

	m := &clearsky.Model{
		Geometry:    clearsky.Meeus{},
		Data:        data,
		Components:  clearsky.Components(cfg.GetInt("Components")),
		Interpolate: cfg.GetBool("Interpolate"),
		ScaleHeight: cfg.GetFloat64("ScaleHeight"),
		Log:         log,
	}
	if a := cfg.GetFloat64("Albedo"); a >= 0 {
		m.Albedo = &a
	}
	r, err := m.Run(ctx, s, times)
	if err != nil {
		return err
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("clearsky: creating output file: %v", err)
	}
	if err = o.WriteNetCDF(f, r); err != nil {
		f.Close()
		return err
	}
	log.WithField("file", outputFile).Info("clearsky: wrote output")
	return f.Close()
}
