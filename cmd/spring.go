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
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/meshmove/InputParameters"
	"github.com/notargets/meshmove/mesh"
	"github.com/notargets/meshmove/movement"
)

// SpringCmd represents the spring command
var SpringCmd = &cobra.Command{
	Use:   "spring",
	Short: "Displace the boundary of a unit square mesh and follow it with the interior",
	Long: `
Moves the tagged boundary segments of a unit square mesh by the prescribed
displacements (tag 1: x=0, 2: x=1, 3: y=0, 4: y=1) and solves the lineal
spring system for the interior vertices`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip *InputParameters.MoverParameters
		)
		if ip, err = processInput(cmd, "lineal"); err != nil {
			return
		}
		defer startProfile()()
		_, err = RunSpring(ip)
		return
	},
}

func init() {
	rootCmd.AddCommand(SpringCmd)
	addMoverFlags(SpringCmd)
	SpringCmd.Flags().Float64("finalTime", 0, "time passed to the forcing update")
	_ = viper.BindPFlag("spring.finalTime", SpringCmd.Flags().Lookup("finalTime"))
}

// RunSpring moves a unit square mesh as described by ip and returns it
func RunSpring(ip *InputParameters.MoverParameters) (m *mesh.Mesh, err error) {
	var (
		mv     movement.SpringMover
		disp   map[int][]float64
		bcs    []movement.DirichletBC
		logger = newLogger()
	)
	method, err := movement.ParseMethod(ip.Method)
	if err != nil {
		return
	}
	if disp, err = ip.BoundaryDisplacements(); err != nil {
		return
	}
	if m, err = unitMesh(ip.Mesh); err != nil {
		return
	}
	opts := ip.Options()
	opts.Logger = logger
	if mv, err = movement.NewSpringMover(m, method, opts); err != nil {
		return
	}
	tags := make([]int, 0, len(disp))
	for tag := range disp {
		tags = append(tags, tag)
	}
	// Later conditions win at shared corners, so the order must not depend on map iteration
	sort.Ints(tags)
	for _, tag := range tags {
		d := disp[tag]
		if len(d) != m.Dim {
			err = fmt.Errorf("displacement of tag %d has %d components, mesh is %dD", tag, len(d), m.Dim)
			return
		}
		value := make([][]float64, m.NumVertices)
		for i := range value {
			value[i] = d
		}
		bcs = append(bcs, movement.NewDirichletBC(mv.CoordinateSpace(), value, tag))
	}
	if len(disp) != 0 {
		// Untouched segments stay put
		var fixed []int
		for _, tag := range m.BoundaryTags() {
			if _, ok := disp[tag]; !ok {
				fixed = append(fixed, tag)
			}
		}
		if len(fixed) != 0 {
			bcs = append([]movement.DirichletBC{movement.NewDirichletBC(mv.CoordinateSpace(), nil, fixed...)}, bcs...)
		}
	}
	if err = mv.Move(ip.FinalTime, nil, bcs...); err != nil {
		return
	}
	logger.Info("Moved mesh", "method", method, "volume", m.TotalVolume())
	return
}
