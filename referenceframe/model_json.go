package referenceframe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"go.viam.com/kinematics/spatialmath"
	"go.viam.com/kinematics/utils"
)

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// ModelConfig represents all supported fields in a kinematics descriptor. A descriptor holds either a
// flat elementary transform sequence (ETS) or a tree of links.
type ModelConfig struct {
	Name           string                 `json:"name" yaml:"name"`
	DoF            int                    `json:"dof,omitempty" yaml:"dof,omitempty"`
	ETS            []ETConfig             `json:"ets,omitempty" yaml:"ets,omitempty"`
	Links          []LinkConfig           `json:"links,omitempty" yaml:"links,omitempty"`
	End            string                 `json:"end,omitempty" yaml:"end,omitempty"`
	Base           *PoseConfig            `json:"base,omitempty" yaml:"base,omitempty"`
	Tool           *PoseConfig            `json:"tool,omitempty" yaml:"tool,omitempty"`
	Configurations map[string][]float64   `json:"configurations,omitempty" yaml:"configurations,omitempty"`
	IK             map[string]interface{} `json:"ik,omitempty" yaml:"ik,omitempty"`
	OriginalFile   *ModelFile             `json:"-" yaml:"-"`
}

// ModelFile is a struct that stores the raw bytes of the file used to create the model as well as its extension,
// which is useful for knowing how to unmarhsal it.
type ModelFile struct {
	Bytes     []byte
	Extension string
}

// ETConfig describes one elementary transform. Type is an axis name ("Rx" … "tz") or "SE3" for an
// arbitrary fixed pose given by T.
type ETConfig struct {
	Type  string      `json:"type" yaml:"type"`
	Joint bool        `json:"joint,omitempty" yaml:"joint,omitempty"`
	Flip  bool        `json:"flip,omitempty" yaml:"flip,omitempty"`
	Index *int        `json:"jindex,omitempty" yaml:"jindex,omitempty"`
	Eta   float64     `json:"eta,omitempty" yaml:"eta,omitempty"`
	Deg   bool        `json:"deg,omitempty" yaml:"deg,omitempty"`
	T     *PoseConfig `json:"T,omitempty" yaml:"T,omitempty"`
	QLim  []float64   `json:"qlim,omitempty" yaml:"qlim,omitempty"`
}

// PoseConfig describes a fixed pose either as a translation plus rotation vector (radians) or as
// 16 row-major matrix entries.
type PoseConfig struct {
	Translation    []float64 `json:"translation,omitempty" yaml:"translation,omitempty"`
	RotationVector []float64 `json:"rotation_vector,omitempty" yaml:"rotation_vector,omitempty"`
	Matrix         []float64 `json:"matrix,omitempty" yaml:"matrix,omitempty"`
}

// LinkConfig describes a tree link: any number of static elements followed by at most one joint.
type LinkConfig struct {
	Name   string        `json:"name" yaml:"name"`
	Parent string        `json:"parent,omitempty" yaml:"parent,omitempty"`
	ETS    []ETConfig    `json:"ets,omitempty" yaml:"ets,omitempty"`
	Shapes []ShapeConfig `json:"shapes,omitempty" yaml:"shapes,omitempty"`
}

// ShapeConfig describes a shape attached to a link.
type ShapeConfig struct {
	Name string      `json:"name,omitempty" yaml:"name,omitempty"`
	Base *PoseConfig `json:"base,omitempty" yaml:"base,omitempty"`
}

// Model is a parsed and validated descriptor. Chain is always set: for tree descriptors it is the path
// from the root to the end link.
type Model struct {
	Name           string
	Chain          *Chain
	Tree           *Tree
	Base           *spatialmath.Pose
	Tool           *spatialmath.Pose
	Configurations map[string][]float64
	IK             map[string]interface{}

	modelConfig *ModelConfig
}

// ModelConfig returns the descriptor the model was built from.
func (m *Model) ModelConfig() *ModelConfig {
	return m.modelConfig
}

// N is the length of the configuration vector the model reads from.
func (m *Model) N() int {
	if m.Tree != nil {
		return m.Tree.N()
	}
	return m.Chain.N()
}

// Configuration returns a named configuration such as "qz" or "qr".
func (m *Model) Configuration(name string) ([]float64, error) {
	q, ok := m.Configurations[name]
	if !ok {
		return nil, errors.Errorf("model %q has no configuration %q, have %v", m.Name, name, lo.Keys(m.Configurations))
	}
	return append([]float64(nil), q...), nil
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*Model, error) {
	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfig{OriginalFile: &ModelFile{Bytes: jsonData, Extension: "json"}}
	if err := json.Unmarshal(jsonData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}
	return m.ParseConfig(modelName)
}

// UnmarshalModelYAML is UnmarshalModelJSON for YAML descriptors.
func UnmarshalModelYAML(yamlData []byte, modelName string) (*Model, error) {
	if len(yamlData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfig{OriginalFile: &ModelFile{Bytes: yamlData, Extension: "yaml"}}
	if err := yaml.Unmarshal(yamlData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml file")
	}
	return m.ParseConfig(modelName)
}

// ParseModelFile will read a given file and parse it as JSON or YAML depending on its extension.
func ParseModelFile(filename, modelName string) (*Model, error) {
	//nolint:gosec
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read model file")
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		return UnmarshalModelJSON(data, modelName)
	case ".yaml", ".yml":
		return UnmarshalModelYAML(data, modelName)
	default:
		return nil, errors.Errorf("unsupported model file extension %q", ext)
	}
}

// ParseConfig converts the ModelConfig struct into a validated Model with the name modelName.
func (cfg *ModelConfig) ParseConfig(modelName string) (*Model, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	model := &Model{
		Name:           modelName,
		Configurations: cfg.Configurations,
		IK:             cfg.IK,
		modelConfig:    cfg,
	}
	if model.Configurations == nil {
		model.Configurations = map[string][]float64{}
	}

	var err error
	if model.Base, err = cfg.Base.pose("base"); err != nil {
		return nil, err
	}
	if model.Tool, err = cfg.Tool.pose("tool"); err != nil {
		return nil, err
	}

	switch {
	case len(cfg.ETS) > 0 && len(cfg.Links) > 0:
		return nil, errors.New("model descriptor must contain either ets or links, not both")
	case len(cfg.ETS) > 0:
		ets, err := parseETS(cfg.ETS, 0)
		if err != nil {
			return nil, err
		}
		model.Chain = NewChain(ets...)
	case len(cfg.Links) > 0:
		tree, err := parseLinks(cfg.Links)
		if err != nil {
			return nil, err
		}
		end := len(tree.Links) - 1
		if cfg.End != "" {
			var ok bool
			if end, ok = tree.Find(cfg.End); !ok {
				return nil, NewFrameMissingError(cfg.End)
			}
		}
		model.Tree = tree
		model.Chain = tree.PathChain(end)
	default:
		return nil, ErrEmptyChain
	}

	if err := model.validate(cfg.DoF); err != nil {
		return nil, errors.Wrapf(err, "invalid model %q", modelName)
	}
	return model, nil
}

func (m *Model) validate(dof int) error {
	var errAll error
	if m.Tree != nil {
		multierr.AppendInto(&errAll, m.Tree.Validate())
	} else {
		multierr.AppendInto(&errAll, m.Chain.Validate())
	}
	if m.Base != nil && !spatialmath.IsRigid(*m.Base, rigidTolerance) {
		multierr.AppendInto(&errAll, NewNonRigidTransformError("base"))
	}
	if m.Tool != nil && !spatialmath.IsRigid(*m.Tool, rigidTolerance) {
		multierr.AppendInto(&errAll, NewNonRigidTransformError("tool"))
	}
	n := m.N()
	if dof > 0 {
		multierr.AppendInto(&errAll, m.Chain.ValidateDoF(dof))
		n = dof
	}
	for name, q := range m.Configurations {
		if err := validateConfiguration(q, n); err != nil {
			multierr.AppendInto(&errAll, errors.Wrapf(err, "configuration %q", name))
		}
	}
	return errAll
}

// parseETS converts element configs into ETs. Joints without an explicit jindex are numbered in
// order starting at next.
func parseETS(cfgs []ETConfig, next int) ([]ET, error) {
	ets := make([]ET, 0, len(cfgs))
	var errAll error
	for i, c := range cfgs {
		et, err := c.parse(next)
		if err != nil {
			multierr.AppendInto(&errAll, errors.Wrapf(err, "element %d", i))
			continue
		}
		if et.isJoint && c.Index == nil {
			next++
		}
		ets = append(ets, et)
	}
	return ets, errAll
}

func (c ETConfig) parse(nextIndex int) (ET, error) {
	if strings.EqualFold(c.Type, "SE3") {
		if c.Joint {
			return ET{}, errors.New("SE3 elements can not be joints")
		}
		p, err := c.T.pose("T")
		if err != nil {
			return ET{}, err
		}
		if p == nil {
			return NewStaticET(spatialmath.Identity()), nil
		}
		return NewStaticET(*p), nil
	}

	axis, err := ParseAxis(c.Type)
	if err != nil {
		return ET{}, err
	}
	if !c.Joint {
		eta := c.Eta
		if c.Deg && axis.IsRotation() {
			eta = utils.DegToRad(eta)
		}
		return newElementary(axis, eta), nil
	}

	idx := nextIndex
	if c.Index != nil {
		idx = *c.Index
	}
	et := NewJointET(axis, idx)
	if c.Flip {
		et = et.WithFlip()
	}
	switch len(c.QLim) {
	case 0:
	case 2:
		et = et.WithLimit(c.QLim[0], c.QLim[1])
	default:
		return ET{}, errors.Errorf("qlim must have 2 entries, got %d", len(c.QLim))
	}
	return et, nil
}

func (pc *PoseConfig) pose(what string) (*spatialmath.Pose, error) {
	if pc == nil {
		return nil, nil
	}
	if len(pc.Matrix) > 0 {
		if len(pc.Matrix) != 16 {
			return nil, errors.Errorf("%s matrix must have 16 entries, got %d", what, len(pc.Matrix))
		}
		p := spatialmath.NewPoseFromSlice(pc.Matrix)
		return &p, nil
	}
	var pt, rv r3.Vector
	if len(pc.Translation) > 0 {
		if len(pc.Translation) != 3 {
			return nil, errors.Errorf("%s translation must have 3 entries, got %d", what, len(pc.Translation))
		}
		pt = r3.Vector{X: pc.Translation[0], Y: pc.Translation[1], Z: pc.Translation[2]}
	}
	if len(pc.RotationVector) > 0 {
		if len(pc.RotationVector) != 3 {
			return nil, errors.Errorf("%s rotation_vector must have 3 entries, got %d", what, len(pc.RotationVector))
		}
		rv = r3.Vector{X: pc.RotationVector[0], Y: pc.RotationVector[1], Z: pc.RotationVector[2]}
	}
	p := spatialmath.NewPoseFromRotationVector(pt, rv)
	return &p, nil
}

// parseLinks builds a tree from link configs, ordering links so parents precede children.
func parseLinks(cfgs []LinkConfig) (*Tree, error) {
	byName := make(map[string]LinkConfig, len(cfgs))
	for _, c := range cfgs {
		if c.Name == "" {
			return nil, errors.New("link with empty name")
		}
		if _, dup := byName[c.Name]; dup {
			return nil, errors.Errorf("duplicate link name %q", c.Name)
		}
		byName[c.Name] = c
	}

	order, err := sortLinks(cfgs, byName)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(order))
	links := make([]Link, 0, len(order))
	next := 0
	for _, c := range order {
		l, err := c.parse(&next)
		if err != nil {
			return nil, errors.Wrapf(err, "link %q", c.Name)
		}
		if c.Parent != "" {
			l.Parent = index[c.Parent]
		}
		index[c.Name] = len(links)
		links = append(links, l)
	}
	return NewTree(links...), nil
}

// sortLinks orders the configs parents first, keeping the input order among siblings.
func sortLinks(cfgs []LinkConfig, byName map[string]LinkConfig) ([]LinkConfig, error) {
	placed := make(map[string]bool, len(cfgs))
	order := make([]LinkConfig, 0, len(cfgs))
	for _, c := range cfgs {
		// walk up to the first placed ancestor, then place the walked links top-down
		var pending []LinkConfig
		seen := map[string]bool{}
		for cur := c; !placed[cur.Name]; {
			if seen[cur.Name] {
				return nil, ErrCircularReference
			}
			seen[cur.Name] = true
			pending = append(pending, cur)
			if cur.Parent == "" {
				break
			}
			parent, ok := byName[cur.Parent]
			if !ok {
				return nil, NewParentFrameMissingError(cur.Name, cur.Parent)
			}
			cur = parent
		}
		for i := len(pending) - 1; i >= 0; i-- {
			placed[pending[i].Name] = true
			order = append(order, pending[i])
		}
	}
	return order, nil
}

func (c LinkConfig) parse(next *int) (Link, error) {
	ets, err := parseETS(c.ETS, *next)
	if err != nil {
		return Link{}, err
	}
	l := NewStaticLink(c.Name, spatialmath.Identity())
	for i, et := range ets {
		if !et.isJoint {
			l.A = spatialmath.Compose(l.A, et.t)
			continue
		}
		if i != len(ets)-1 {
			return Link{}, errors.New("a joint must be the last element of a link")
		}
		l.IsJoint = true
		l.Axis = et.axis
		l.Flip = et.flip
		l.JointIndex = et.jointIndex
		if lim, ok := et.Limit(); ok {
			l.Limit = &lim
		}
		if c.ETS[i].Index == nil {
			*next++
		}
	}
	for _, s := range c.Shapes {
		base, err := s.Base.pose("shape base")
		if err != nil {
			return Link{}, err
		}
		shape := Shape{Name: s.Name, Base: spatialmath.Identity()}
		if base != nil {
			shape.Base = *base
		}
		l.Shapes = append(l.Shapes, shape)
	}
	return l, nil
}
