package InputParameters

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ghodss/yaml"

	"github.com/notargets/meshmove/movement"
)

type MeshParameters struct {
	Dim int `yaml:"Dim" toml:"Dim"`
	// Cells per side of the unit domain. A bare "N" key is a YAML 1.1 boolean, hence the long name
	CellsPerSide int `yaml:"CellsPerSide" toml:"CellsPerSide"`
}

// Parameters obtained from the YAML or TOML input file
type MoverParameters struct {
	Title            string               `yaml:"Title" toml:"Title"`
	Method           string               `yaml:"Method" toml:"Method"`
	Monitor          string               `yaml:"Monitor" toml:"Monitor"`
	Mesh             MeshParameters       `yaml:"Mesh" toml:"Mesh"`
	PseudoTimestep   float64              `yaml:"PseudoTimestep" toml:"PseudoTimestep"`
	MaxIterations    int                  `yaml:"MaxIterations" toml:"MaxIterations"`
	Rtol             float64              `yaml:"Rtol" toml:"Rtol"`
	Dtol             float64              `yaml:"Dtol" toml:"Dtol"`
	FixBoundaryNodes bool                 `yaml:"FixBoundaryNodes" toml:"FixBoundaryNodes"`
	FinalTime        float64              `yaml:"FinalTime" toml:"FinalTime"`
	Displacement     map[string][]float64 `yaml:"Displacement" toml:"Displacement"` // Boundary tag to prescribed displacement, springs only
}

func (ip *MoverParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *MoverParameters) ParseTOML(data []byte) error {
	return toml.Unmarshal(data, ip)
}

// ReadFile parses a .toml file as TOML and anything else as YAML
func ReadFile(path string) (ip *MoverParameters, err error) {
	var (
		data []byte
	)
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	ip = &MoverParameters{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = ip.ParseTOML(data)
	} else {
		err = ip.Parse(data)
	}
	if err != nil {
		err = fmt.Errorf("unable to parse %s: %w", path, err)
	}
	return
}

// Options converts the file values, zero values fall through to the mover defaults
func (ip *MoverParameters) Options() movement.Options {
	return movement.Options{
		PseudoTimestep:   ip.PseudoTimestep,
		MaxIter:          ip.MaxIterations,
		Rtol:             ip.Rtol,
		Dtol:             ip.Dtol,
		FixBoundaryNodes: ip.FixBoundaryNodes,
	}
}

// BoundaryDisplacements returns the prescribed displacements keyed by boundary tag
func (ip *MoverParameters) BoundaryDisplacements() (disp map[int][]float64, err error) {
	disp = make(map[int][]float64, len(ip.Displacement))
	for key, val := range ip.Displacement {
		var tag int
		if tag, err = strconv.Atoi(key); err != nil {
			err = fmt.Errorf("displacement key %q is not a boundary tag: %w", key, err)
			return
		}
		disp[tag] = val
	}
	return
}

// Print writes the parameters in the aligned "value = name" layout
func (ip *MoverParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	fmt.Fprintf(w, "[%s]\t\t= Method\n", ip.Method)
	fmt.Fprintf(w, "[%s]\t\t= Monitor\n", ip.Monitor)
	fmt.Fprintf(w, "[%d, %d]\t\t\t= Mesh Dimension, Cells per side\n", ip.Mesh.Dim, ip.Mesh.CellsPerSide)
	fmt.Fprintf(w, "%8.5f\t\t= PseudoTimestep\n", ip.PseudoTimestep)
	fmt.Fprintf(w, "[%d]\t\t\t= MaxIterations\n", ip.MaxIterations)
	fmt.Fprintf(w, "%8.2e\t\t= Rtol\n", ip.Rtol)
	fmt.Fprintf(w, "%8.5f\t\t= Dtol\n", ip.Dtol)
	fmt.Fprintf(w, "[%v]\t\t\t= FixBoundaryNodes\n", ip.FixBoundaryNodes)
	fmt.Fprintf(w, "%8.5f\t\t= FinalTime\n", ip.FinalTime)
	keys := make([]string, len(ip.Displacement))
	i := 0
	for k := range ip.Displacement {
		keys[i] = k
		i++
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "Displacement[%s] = %v\n", key, ip.Displacement[key])
	}
}
