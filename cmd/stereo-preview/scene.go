package main

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-stereo/common"
	"github.com/Carmen-Shannon/oxy-stereo/engine/light"
	"github.com/Carmen-Shannon/oxy-stereo/engine/model"
	"github.com/Carmen-Shannon/oxy-stereo/engine/orchestrator"
	"github.com/Carmen-Shannon/oxy-stereo/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	floorSize    = 20
	ringCubes    = 6
	ringRadius   = 3.5
	cubeSize     = 1.0
	spinRadiansS = 0.6
)

// demoScene is a floor with a ring of spinning cubes under the demo lights.
type demoScene struct {
	materials material.Arena
	floor     *model.MeshBinding
	cube      *model.MeshBinding
	floorMat  material.Material
	cubeMats  []material.Material
	lights    []light.SpotLight
	entities  []orchestrator.Entity
	angle     float32
}

// newDemoScene builds the meshes and materials. A non-empty texturePath textures the
// floor and every other cube; decode failures surface on the first frame and fall
// back to flat color.
func newDemoScene(texturePath string, maxTexture int) (*demoScene, error) {
	s := &demoScene{lights: light.DemoLights()}

	verts, idx := model.Plane(floorSize, floorSize/4)
	floor, err := model.NewMeshBinding("floor", verts, idx)
	if err != nil {
		return nil, fmt.Errorf("floor mesh: %w", err)
	}
	s.floor = floor

	verts, idx = model.Cube(cubeSize)
	cube, err := model.NewMeshBinding("cube", verts, idx)
	if err != nil {
		s.release()
		return nil, fmt.Errorf("cube mesh: %w", err)
	}
	s.cube = cube

	var tex *common.ImportedTexture
	if texturePath != "" {
		tex = &common.ImportedTexture{Name: "base_color", Path: texturePath, MaxSize: maxTexture}
	}
	floorOpts := []material.MaterialBuilderOption{material.WithName("floor"), material.WithBaseColor([4]float32{0.6, 0.6, 0.6, 1})}
	if tex != nil {
		floorOpts = append(floorOpts, material.WithBaseColorTexture(tex))
	}
	s.floorMat = s.materials.New(floorOpts...)

	for i := range ringCubes {
		hue := float32(i) / ringCubes
		opts := []material.MaterialBuilderOption{
			material.WithName(fmt.Sprintf("cube %d", i)),
			material.WithBaseColor(hueColor(hue)),
		}
		if tex != nil && i%2 == 0 {
			opts = append(opts, material.WithBaseColorTexture(tex))
		}
		s.cubeMats = append(s.cubeMats, s.materials.New(opts...))
	}
	s.entities = make([]orchestrator.Entity, 0, 1+ringCubes)
	s.update(0)
	return s, nil
}

// update advances the cube spin by dt seconds and rebuilds the entity list.
func (s *demoScene) update(dt float32) {
	s.angle = float32(math.Mod(float64(s.angle+dt*spinRadiansS), 2*math.Pi))
	s.entities = s.entities[:0]
	s.entities = append(s.entities, orchestrator.Entity{
		Handle:         0,
		WorldFromModel: mgl32.Ident4(),
		Mesh:           s.floor,
		Material:       s.floorMat,
	})
	for i := range ringCubes {
		a := float64(i) * 2 * math.Pi / ringCubes
		pos := mgl32.Vec3{float32(math.Cos(a)) * ringRadius, cubeSize / 2, float32(math.Sin(a)) * ringRadius}
		spin := s.angle
		if i%2 == 1 {
			spin = -spin
		}
		s.entities = append(s.entities, orchestrator.Entity{
			Handle:         orchestrator.Handle(1 + i),
			WorldFromModel: mgl32.Translate3D(pos.X(), pos.Y(), pos.Z()).Mul4(mgl32.HomogRotate3DY(spin)),
			Mesh:           s.cube,
			Material:       s.cubeMats[i],
		})
	}
}

func (s *demoScene) release() {
	if s.floor != nil {
		s.floor.Release()
	}
	if s.cube != nil {
		s.cube.Release()
	}
}

// hueColor returns a saturated color for h in [0, 1).
func hueColor(h float32) [4]float32 {
	c := mgl32.Vec3{
		clamp01(float32(math.Abs(float64(h*6-3))) - 1),
		clamp01(2 - float32(math.Abs(float64(h*6-2)))),
		clamp01(2 - float32(math.Abs(float64(h*6-4)))),
	}
	return [4]float32{c.X(), c.Y(), c.Z(), 1}
}

func clamp01(v float32) float32 {
	return mgl32.Clamp(v, 0, 1)
}
