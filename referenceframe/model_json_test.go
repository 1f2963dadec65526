package referenceframe

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"

	"go.viam.com/kinematics/spatialmath"
)

const twoLinkJSON = `{
  "name": "planar",
  "ets": [
    {"type": "Rz", "joint": true, "qlim": [-3, 3]},
    {"type": "tx", "eta": 1},
    {"type": "Rz", "joint": true, "flip": true},
    {"type": "tx", "eta": 0.5},
    {"type": "SE3", "T": {"translation": [0, 0, 0.1], "rotation_vector": [0, 0, 1.5707963267948966]}}
  ],
  "tool": {"translation": [0, 0, 0.05]},
  "configurations": {"qz": [0, 0]},
  "ik": {"max_iterations": 50}
}`

const twoLinkYAML = `
name: planar_tree
end: l2
links:
  - name: l2
    parent: l1
    ets:
      - {type: tx, eta: 1}
      - {type: Rz, joint: true, flip: true}
    shapes:
      - base: {translation: [0.25, 0, 0]}
  - name: l1
    ets:
      - {type: Rz, joint: true, qlim: [-3, 3]}
  - name: tip
    parent: l2
    ets:
      - {type: tx, eta: 0.5}
`

func TestUnmarshalModelJSON(t *testing.T) {
	m, err := UnmarshalModelJSON([]byte(twoLinkJSON), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name, test.ShouldEqual, "planar")
	test.That(t, m.Tree, test.ShouldBeNil)
	test.That(t, m.N(), test.ShouldEqual, 2)
	test.That(t, m.Chain.JointIndices(), test.ShouldResemble, []int{0, 1})
	test.That(t, m.Chain.Limits()[0], test.ShouldResemble, Limit{-3, 3})
	test.That(t, m.Chain.String(), test.ShouldEqual, "Rz(q0) ⊕ tx(1) ⊕ Rz(-q1) ⊕ tx(0.5) ⊕ SE3")
	test.That(t, m.Base, test.ShouldBeNil)
	test.That(t, m.Tool.Translation().Z, test.ShouldEqual, 0.05)
	test.That(t, m.IK["max_iterations"], test.ShouldEqual, 50.)
	test.That(t, m.ModelConfig().OriginalFile.Extension, test.ShouldEqual, "json")

	q, err := m.Configuration("qz")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q, test.ShouldResemble, []float64{0, 0})
	_, err = m.Configuration("qr")
	test.That(t, err, test.ShouldNotBeNil)

	p := m.Chain.ForwardKinematics([]float64{math.Pi / 2, math.Pi / 2}, nil, m.Tool)
	// Rz(90) tx(1) Rz(-90) tx(0.5): ends at (0.5, 1) facing +x, then rotated 90 by the SE3
	test.That(t, p.Translation().X, test.ShouldAlmostEqual, 0.5)
	test.That(t, p.Translation().Y, test.ShouldAlmostEqual, 1)
	test.That(t, p.Translation().Z, test.ShouldAlmostEqual, 0.15)
	test.That(t, p.At(1, 0), test.ShouldAlmostEqual, 1)

	named, err := UnmarshalModelJSON([]byte(twoLinkJSON), "foo")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, named.Name, test.ShouldEqual, "foo")
}

func TestUnmarshalModelYAML(t *testing.T) {
	m, err := UnmarshalModelYAML([]byte(twoLinkYAML), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Tree, test.ShouldNotBeNil)
	test.That(t, len(m.Tree.Links), test.ShouldEqual, 3)

	// parents are sorted ahead of children
	test.That(t, m.Tree.Links[0].Name, test.ShouldEqual, "l1")
	test.That(t, m.Tree.Links[1].Name, test.ShouldEqual, "l2")
	test.That(t, m.Tree.Links[1].Parent, test.ShouldEqual, 0)
	test.That(t, m.Tree.Links[2].Parent, test.ShouldEqual, 1)
	test.That(t, m.Tree.Links[0].Limit, test.ShouldResemble, &Limit{-3, 3})
	test.That(t, m.Tree.Validate(), test.ShouldBeNil)

	// joints are numbered in topological order
	test.That(t, m.Tree.Links[0].JointIndex, test.ShouldEqual, 0)
	test.That(t, m.Tree.Links[1].JointIndex, test.ShouldEqual, 1)
	test.That(t, m.Tree.Links[1].Flip, test.ShouldBeTrue)

	// the chain ends at l2, not at tip
	test.That(t, m.Chain.String(), test.ShouldEqual, "Rz(q0) ⊕ SE3 ⊕ Rz(-q1)")

	q := []float64{0.4, -1.1}
	m.Tree.Propagate(q, spatialmath.Identity())
	p := m.Chain.ForwardKinematics(q, nil, nil)
	test.That(t, spatialmath.PoseAlmostEqual(p, m.Tree.Links[1].FK, 1e-12), test.ShouldBeTrue)
	shape := m.Tree.Links[1].Shapes[0]
	test.That(t, spatialmath.PoseAlmostEqual(shape.WorldT, spatialmath.Compose(p, spatialmath.TransX(0.25)), 1e-12),
		test.ShouldBeTrue)
}

func TestParseModelFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "planar.json")
	yamlPath := filepath.Join(dir, "planar.yml")
	test.That(t, os.WriteFile(jsonPath, []byte(twoLinkJSON), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(yamlPath, []byte(twoLinkYAML), 0o600), test.ShouldBeNil)

	m, err := ParseModelFile(jsonPath, "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name, test.ShouldEqual, "planar")

	m, err = ParseModelFile(yamlPath, "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m.Name, test.ShouldEqual, "planar_tree")

	_, err = ParseModelFile(filepath.Join(dir, "planar.txt"), "")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ParseModelFile(filepath.Join(dir, "missing.json"), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to read model file")
}

func TestModelConfigErrors(t *testing.T) {
	_, err := UnmarshalModelJSON(nil, "")
	test.That(t, err, test.ShouldBeError, ErrNoModelInformation)

	_, err = UnmarshalModelJSON([]byte(`{"name": "x"}`), "")
	test.That(t, err, test.ShouldBeError, ErrEmptyChain)

	_, err = UnmarshalModelJSON([]byte(`{"name": "x"`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to unmarshal json file")

	_, err = UnmarshalModelJSON([]byte(`{"ets": [{"type": "Rq", "joint": true}]}`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid axis")

	_, err = UnmarshalModelJSON([]byte(`{"ets": [{"type": "Rz", "joint": true, "qlim": [1]}]}`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "qlim must have 2 entries")

	_, err = UnmarshalModelJSON([]byte(`{"dof": 1, "ets": [{"type": "Rz", "joint": true, "jindex": 3}]}`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "outside [0, 1)")

	_, err = UnmarshalModelJSON([]byte(`{"ets": [{"type": "Rz", "joint": true}], "configurations": {"qz": [0, 0]}}`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, `configuration "qz"`)

	_, err = UnmarshalModelJSON([]byte(`{"ets": [{"type": "SE3", "T": {"matrix": [1, 0, 0]}}]}`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "16 entries")

	_, err = UnmarshalModelJSON([]byte(`{"ets": [{"type": "tx"}], "links": [{"name": "a"}]}`), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "not both")
}

func TestLinkConfigErrors(t *testing.T) {
	_, err := UnmarshalModelYAML([]byte("links:\n  - {name: a, parent: b}\n  - {name: b, parent: a}\n"), "")
	test.That(t, err, test.ShouldBeError, ErrCircularReference)

	_, err = UnmarshalModelYAML([]byte("links:\n  - {name: a, parent: c}\n"), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, `parent "c" of link "a" not found`)

	_, err = UnmarshalModelYAML([]byte("links:\n  - {name: a}\n  - {name: a}\n"), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "duplicate link name")

	_, err = UnmarshalModelYAML([]byte("links:\n  - name: a\n    ets:\n      - {type: Rz, joint: true}\n      - {type: tx, eta: 1}\n"), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint must be the last element")

	_, err = UnmarshalModelYAML([]byte("end: z\nlinks:\n  - {name: a}\n"), "")
	test.That(t, err.Error(), test.ShouldContainSubstring, `"z" not in model`)
}
