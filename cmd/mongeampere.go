/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshmove/InputParameters"
	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/movement"
)

// MongeAmpereCmd represents the mongeampere command
var MongeAmpereCmd = &cobra.Command{
	Use:   "mongeampere",
	Short: "Adapt a unit domain mesh to a monitor function",
	Long: `
Moves the vertices of a unit interval, square or cube mesh so that the monitor
function is equidistributed, solving the Monge-Ampere equation by pseudo-time
relaxation or by a quasi-Newton method`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip *InputParameters.MoverParameters
		)
		if ip, err = processInput(cmd, "relaxation"); err != nil {
			return
		}
		defer startProfile()()
		_, err = RunMongeAmpere(ip)
		return
	},
}

func init() {
	rootCmd.AddCommand(MongeAmpereCmd)
	addMoverFlags(MongeAmpereCmd)
	MongeAmpereCmd.Flags().String("monitor", "", "monitor function: constant, ring or bump")
	MongeAmpereCmd.Flags().Float64("rtol", 0, "relative tolerance on the equidistribution residual")
	MongeAmpereCmd.Flags().Int("maxIterations", 0, "iteration cap")
	MongeAmpereCmd.Flags().Bool("fixBoundary", false, "keep every boundary vertex in place")
	for _, name := range []string{"monitor", "rtol", "maxIterations", "fixBoundary"} {
		_ = viper.BindPFlag("mongeampere."+name, MongeAmpereCmd.Flags().Lookup(name))
	}
}

func addMoverFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("inputConditionsFile", "I", "", "YAML or TOML file of mover parameters")
	cmd.Flags().StringP("method", "m", "", "mover method, overrides the input file")
	cmd.Flags().IntP("dim", "d", 0, "dimension of the unit domain mesh")
	cmd.Flags().IntP("n", "n", 0, "cells per side of the unit domain mesh")
}

// processInput reads the parameter file if there is one, then lets flags, environment and config override it
func processInput(cmd *cobra.Command, defaultMethod string) (ip *InputParameters.MoverParameters, err error) {
	var (
		file, _ = cmd.Flags().GetString("inputConditionsFile")
		v       = viper.GetViper()
	)
	ip = &InputParameters.MoverParameters{}
	if file != "" {
		if ip, err = InputParameters.ReadFile(file); err != nil {
			return
		}
	}
	if method, _ := cmd.Flags().GetString("method"); method != "" {
		ip.Method = method
	}
	if ip.Method == "" {
		ip.Method = defaultMethod
	}
	if d, _ := cmd.Flags().GetInt("dim"); d != 0 {
		ip.Mesh.Dim = d
	}
	if n, _ := cmd.Flags().GetInt("n"); n != 0 {
		ip.Mesh.CellsPerSide = n
	}
	prefix := cmd.Name() + "."
	if s := v.GetString(prefix + "monitor"); s != "" {
		ip.Monitor = s
	}
	if r := v.GetFloat64(prefix + "rtol"); r != 0 {
		ip.Rtol = r
	}
	if it := v.GetInt(prefix + "maxIterations"); it != 0 {
		ip.MaxIterations = it
	}
	if v.GetBool(prefix + "fixBoundary") {
		ip.FixBoundaryNodes = true
	}
	if t := v.GetFloat64(prefix + "finalTime"); t != 0 {
		ip.FinalTime = t
	}
	if ip.Mesh.Dim == 0 {
		ip.Mesh.Dim = 2
	}
	if ip.Mesh.CellsPerSide == 0 {
		ip.Mesh.CellsPerSide = 10
	}
	if v.GetBool("verbose") {
		ip.Print(cmd.OutOrStdout())
	}
	return
}

// unitMesh checks the mesh parameters before handing them to the generators, which panic on bad input
func unitMesh(mp InputParameters.MeshParameters) (m *mesh.Mesh, err error) {
	if mp.CellsPerSide < 1 {
		err = fmt.Errorf("mesh needs at least one cell per side, have %d", mp.CellsPerSide)
		return
	}
	switch mp.Dim {
	case 1:
		m = mesh.UnitIntervalMesh(mp.CellsPerSide)
	case 2:
		m = mesh.UnitSquareMesh(mp.CellsPerSide, mp.CellsPerSide)
	case 3:
		m = mesh.UnitCubeMesh(mp.CellsPerSide, mp.CellsPerSide, mp.CellsPerSide)
	default:
		err = fmt.Errorf("mesh dimension must be 1, 2 or 3, have %d", mp.Dim)
	}
	return
}

// RunMongeAmpere moves a unit domain mesh as described by ip and returns it
func RunMongeAmpere(ip *InputParameters.MoverParameters) (m *mesh.Mesh, err error) {
	var (
		monitor movement.MonitorFunc
		mv      movement.MongeAmpereMover
		logger  = newLogger()
	)
	method, err := movement.ParseMethod(ip.Method)
	if err != nil {
		return
	}
	if monitor, err = movement.NamedMonitor(ip.Monitor); err != nil {
		return
	}
	if m, err = unitMesh(ip.Mesh); err != nil {
		return
	}
	logger.Info("Mesh", "statistics", m.PrintStatistics())
	opts := ip.Options()
	opts.Logger = logger
	if mv, err = movement.NewMongeAmpereMover(m, monitor, method, opts); err != nil {
		return
	}
	var iters int
	if iters, err = mv.Move(); err != nil {
		return
	}
	d := mv.Diagnostics()
	logger.Info("Moved mesh", "method", method, "iterations", iters, "residual", d.Residual,
		"minmax", d.MinMax, "cv", d.CoefficientOfVariation)
	return
}
