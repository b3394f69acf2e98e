package spectroscopy

import (
	"context"
	"fmt"

	"gonum.org/v1/plot"

	"github.com/torus-diagnostics/spectroscope/geometry"
	"github.com/torus-diagnostics/spectroscope/pipeline"
)

// group aggregates an ordered collection of observers under one parent
// scene node. Every forwarded attribute offers three operations: a read
// returning one value per member in membership order, a broadcast setter
// applying one value to every member, and a positional setter assigning
// member-wise and failing on length mismatch. Membership is fixed to one
// observer subtype per concrete group at compile time.
type group[T Observer] struct {
	Node

	sightLines []T
}

// SightLines returns the members in membership order.
func (g *group[T]) SightLines() []T {
	out := make([]T, len(g.sightLines))
	copy(out, g.sightLines)
	return out
}

// SetSightLines replaces the membership, reparenting every member to the
// group node.
func (g *group[T]) SetSightLines(sightLines []T) {
	members := make([]T, len(sightLines))
	copy(members, sightLines)
	for _, sl := range members {
		sl.SetParent(&g.Node)
	}
	g.sightLines = members
}

// AddSightLine reparents the observer to the group and appends it.
func (g *group[T]) AddSightLine(sightLine T) {
	sightLine.SetParent(&g.Node)
	g.sightLines = append(g.sightLines, sightLine)
}

// Len returns the number of members.
func (g *group[T]) Len() int {
	return len(g.sightLines)
}

// At returns the member at position i.
func (g *group[T]) At(i int) (T, error) {
	var zero T
	if i < 0 || i >= len(g.sightLines) {
		return zero, fmt.Errorf("sight-line %d not available in group %q with only %d sight-lines",
			i, g.Name(), len(g.sightLines))
	}
	return g.sightLines[i], nil
}

// Named returns the unique member with the given name. The lookup fails
// when no member matches, or when the name is ambiguous.
func (g *group[T]) Named(name string) (T, error) {
	var zero T
	var matches []T
	for _, sl := range g.sightLines {
		if sl.Name() == name {
			matches = append(matches, sl)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return zero, fmt.Errorf("sight-line %q was not found in group %q", name, g.Name())
	default:
		return zero, fmt.Errorf("found %d sight-lines with name %q in group %q", len(matches), name, g.Name())
	}
}

func (g *group[T]) checkLength(attr string, n int) error {
	if n != len(g.sightLines) {
		return fmt.Errorf("the length of %q (%d) mismatches the number of sight-lines (%d)",
			attr, n, len(g.sightLines))
	}
	return nil
}

// Names returns each member's name in membership order.
func (g *group[T]) Names() []string {
	names := make([]string, len(g.sightLines))
	for i, sl := range g.sightLines {
		names[i] = sl.Name()
	}
	return names
}

// SetEachName assigns member names positionally.
func (g *group[T]) SetEachName(names []string) error {
	if err := g.checkLength("names", len(names)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetName(names[i])
	}
	return nil
}

// Origins returns each member's origin point.
func (g *group[T]) Origins() []geometry.Point3 {
	origins := make([]geometry.Point3, len(g.sightLines))
	for i, sl := range g.sightLines {
		origins[i] = sl.Origin()
	}
	return origins
}

// SetOrigin broadcasts one origin point to every member.
func (g *group[T]) SetOrigin(origin geometry.Point3) {
	for _, sl := range g.sightLines {
		sl.SetOrigin(origin)
	}
}

// SetEachOrigin assigns origin points positionally.
func (g *group[T]) SetEachOrigin(origins []geometry.Point3) error {
	if err := g.checkLength("origin", len(origins)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetOrigin(origins[i])
	}
	return nil
}

// Directions returns each member's observation direction.
func (g *group[T]) Directions() []geometry.Vec3 {
	directions := make([]geometry.Vec3, len(g.sightLines))
	for i, sl := range g.sightLines {
		directions[i] = sl.Direction()
	}
	return directions
}

// SetDirection broadcasts one observation direction to every member.
func (g *group[T]) SetDirection(direction geometry.Vec3) error {
	if direction.IsZero() {
		return fmt.Errorf("observer direction must be non-zero")
	}
	for _, sl := range g.sightLines {
		if err := sl.SetDirection(direction); err != nil {
			return err
		}
	}
	return nil
}

// SetEachDirection assigns observation directions positionally. Every
// direction is validated before any member changes.
func (g *group[T]) SetEachDirection(directions []geometry.Vec3) error {
	if err := g.checkLength("direction", len(directions)); err != nil {
		return err
	}
	for i, d := range directions {
		if d.IsZero() {
			return fmt.Errorf("direction %d must be non-zero", i)
		}
	}
	for i, sl := range g.sightLines {
		if err := sl.SetDirection(directions[i]); err != nil {
			return err
		}
	}
	return nil
}

// DisplayProgress returns each member's per-pipeline progress toggles.
func (g *group[T]) DisplayProgress() [][]*bool {
	flags := make([][]*bool, len(g.sightLines))
	for i, sl := range g.sightLines {
		flags[i] = sl.DisplayProgress()
	}
	return flags
}

// SetDisplayProgress broadcasts one progress toggle to every member.
func (g *group[T]) SetDisplayProgress(display bool) {
	for _, sl := range g.sightLines {
		sl.SetDisplayProgress(display)
	}
}

// SetEachDisplayProgress assigns progress toggles positionally.
func (g *group[T]) SetEachDisplayProgress(display []bool) error {
	if err := g.checkLength("display_progress", len(display)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetDisplayProgress(display[i])
	}
	return nil
}

// AccumulateFlags returns each member's per-pipeline accumulation toggles.
func (g *group[T]) AccumulateFlags() [][]bool {
	flags := make([][]bool, len(g.sightLines))
	for i, sl := range g.sightLines {
		flags[i] = sl.AccumulateFlags()
	}
	return flags
}

// SetAccumulate broadcasts one accumulation toggle to every member.
func (g *group[T]) SetAccumulate(accumulate bool) {
	for _, sl := range g.sightLines {
		sl.SetAccumulate(accumulate)
	}
}

// SetEachAccumulate assigns accumulation toggles positionally.
func (g *group[T]) SetEachAccumulate(accumulate []bool) error {
	if err := g.checkLength("accumulate", len(accumulate)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetAccumulate(accumulate[i])
	}
	return nil
}

// MinWavelengths returns each member's lower wavelength bound.
func (g *group[T]) MinWavelengths() []float64 {
	values := make([]float64, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.MinWavelength()
	}
	return values
}

// SetMinWavelength broadcasts one lower wavelength bound to every member.
func (g *group[T]) SetMinWavelength(v float64) {
	for _, sl := range g.sightLines {
		sl.SetMinWavelength(v)
	}
}

// SetEachMinWavelength assigns lower wavelength bounds positionally.
func (g *group[T]) SetEachMinWavelength(values []float64) error {
	if err := g.checkLength("min_wavelength", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetMinWavelength(values[i])
	}
	return nil
}

// MaxWavelengths returns each member's upper wavelength bound.
func (g *group[T]) MaxWavelengths() []float64 {
	values := make([]float64, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.MaxWavelength()
	}
	return values
}

// SetMaxWavelength broadcasts one upper wavelength bound to every member.
func (g *group[T]) SetMaxWavelength(v float64) {
	for _, sl := range g.sightLines {
		sl.SetMaxWavelength(v)
	}
}

// SetEachMaxWavelength assigns upper wavelength bounds positionally.
func (g *group[T]) SetEachMaxWavelength(values []float64) error {
	if err := g.checkLength("max_wavelength", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetMaxWavelength(values[i])
	}
	return nil
}

// SpectralBins returns each member's spectral bin count.
func (g *group[T]) SpectralBins() []int {
	values := make([]int, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.SpectralBins()
	}
	return values
}

// SetSpectralBins broadcasts one spectral bin count to every member.
func (g *group[T]) SetSpectralBins(v int) {
	for _, sl := range g.sightLines {
		sl.SetSpectralBins(v)
	}
}

// SetEachSpectralBins assigns spectral bin counts positionally.
func (g *group[T]) SetEachSpectralBins(values []int) error {
	if err := g.checkLength("spectral_bins", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetSpectralBins(values[i])
	}
	return nil
}

// RayExtinctionProbs returns each member's ray extinction probability.
func (g *group[T]) RayExtinctionProbs() []float64 {
	values := make([]float64, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.RayExtinctionProb()
	}
	return values
}

// SetRayExtinctionProb broadcasts one extinction probability to every member.
func (g *group[T]) SetRayExtinctionProb(v float64) {
	for _, sl := range g.sightLines {
		sl.SetRayExtinctionProb(v)
	}
}

// SetEachRayExtinctionProb assigns extinction probabilities positionally.
func (g *group[T]) SetEachRayExtinctionProb(values []float64) error {
	if err := g.checkLength("ray_extinction_prob", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetRayExtinctionProb(values[i])
	}
	return nil
}

// RayExtinctionMinDepths returns each member's minimum extinction depth.
func (g *group[T]) RayExtinctionMinDepths() []int {
	values := make([]int, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.RayExtinctionMinDepth()
	}
	return values
}

// SetRayExtinctionMinDepth broadcasts one minimum extinction depth to every
// member.
func (g *group[T]) SetRayExtinctionMinDepth(v int) {
	for _, sl := range g.sightLines {
		sl.SetRayExtinctionMinDepth(v)
	}
}

// SetEachRayExtinctionMinDepth assigns minimum extinction depths
// positionally.
func (g *group[T]) SetEachRayExtinctionMinDepth(values []int) error {
	if err := g.checkLength("ray_extinction_min_depth", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetRayExtinctionMinDepth(values[i])
	}
	return nil
}

// RayMaxDepths returns each member's maximum ray depth.
func (g *group[T]) RayMaxDepths() []int {
	values := make([]int, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.RayMaxDepth()
	}
	return values
}

// SetRayMaxDepth broadcasts one maximum ray depth to every member.
func (g *group[T]) SetRayMaxDepth(v int) {
	for _, sl := range g.sightLines {
		sl.SetRayMaxDepth(v)
	}
}

// SetEachRayMaxDepth assigns maximum ray depths positionally.
func (g *group[T]) SetEachRayMaxDepth(values []int) error {
	if err := g.checkLength("ray_max_depth", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetRayMaxDepth(values[i])
	}
	return nil
}

// RayImportantPathWeights returns each member's important path weight.
func (g *group[T]) RayImportantPathWeights() []float64 {
	values := make([]float64, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.RayImportantPathWeight()
	}
	return values
}

// SetRayImportantPathWeight broadcasts one important path weight to every
// member.
func (g *group[T]) SetRayImportantPathWeight(v float64) {
	for _, sl := range g.sightLines {
		sl.SetRayImportantPathWeight(v)
	}
}

// SetEachRayImportantPathWeight assigns important path weights positionally.
func (g *group[T]) SetEachRayImportantPathWeight(values []float64) error {
	if err := g.checkLength("ray_important_path_weight", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetRayImportantPathWeight(values[i])
	}
	return nil
}

// PixelSamples returns each member's sample count per observation.
func (g *group[T]) PixelSamples() []int {
	values := make([]int, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.PixelSamples()
	}
	return values
}

// SetPixelSamples broadcasts one sample count to every member.
func (g *group[T]) SetPixelSamples(v int) {
	for _, sl := range g.sightLines {
		sl.SetPixelSamples(v)
	}
}

// SetEachPixelSamples assigns sample counts positionally.
func (g *group[T]) SetEachPixelSamples(values []int) error {
	if err := g.checkLength("pixel_samples", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetPixelSamples(values[i])
	}
	return nil
}

// SamplesPerTask returns each member's minimum samples per render task.
func (g *group[T]) SamplesPerTask() []int {
	values := make([]int, len(g.sightLines))
	for i, sl := range g.sightLines {
		values[i] = sl.SamplesPerTask()
	}
	return values
}

// SetSamplesPerTask broadcasts one per-task sample count to every member.
func (g *group[T]) SetSamplesPerTask(v int) {
	for _, sl := range g.sightLines {
		sl.SetSamplesPerTask(v)
	}
}

// SetEachSamplesPerTask assigns per-task sample counts positionally.
func (g *group[T]) SetEachSamplesPerTask(values []int) error {
	if err := g.checkLength("samples_per_task", len(values)); err != nil {
		return err
	}
	for i, sl := range g.sightLines {
		sl.SetSamplesPerTask(values[i])
	}
	return nil
}

// Pipelines returns each member's pipeline list in membership order.
func (g *group[T]) Pipelines() [][]*pipeline.Pipeline {
	out := make([][]*pipeline.Pipeline, len(g.sightLines))
	for i, sl := range g.sightLines {
		out[i] = sl.Pipelines()
	}
	return out
}

// ConnectPipelines constructs one pipeline per property triple for each
// member, replacing the member's previous pipelines. Constructed pipelines
// are non-accumulating. With no properties given, a single spectral
// radiance pipeline is connected. Unsupported kinds are rejected before
// any member changes.
func (g *group[T]) ConnectPipelines(properties []pipeline.Property) error {
	if len(properties) == 0 {
		properties = []pipeline.Property{{Kind: pipeline.SpectralRadiance}}
	}
	for _, prop := range properties {
		if !prop.Kind.Valid() {
			return fmt.Errorf("unsupported pipeline kind %q: supported kinds are "+
				"SpectralRadiance, SpectralPower, Radiance and Power", prop.Kind)
		}
	}

	for _, sl := range g.sightLines {
		pipelines := make([]*pipeline.Pipeline, 0, len(properties))
		for _, prop := range properties {
			p, err := pipeline.New(prop)
			if err != nil {
				return err
			}
			pipelines = append(pipelines, p)
		}
		sl.SetPipelines(pipelines)
	}
	return nil
}

// Observe observes with every member in membership order, sequentially.
// The first failure aborts the remaining members.
func (g *group[T]) Observe(ctx context.Context) error {
	for _, sl := range g.sightLines {
		if err := sl.Observe(ctx); err != nil {
			return err
		}
	}
	return nil
}

// PlotSpectra overlays the spectra observed by every member holding the
// referenced pipeline on one figure. Members lacking the pipeline are
// skipped; the call fails when no member has it or when the resolved
// pipelines mix kinds. ymax caps the y-axis when positive.
func (g *group[T]) PlotSpectra(ref PipelineRef, unit string, ymax float64) (*plot.Plot, error) {
	var members []T
	var pipelines []*pipeline.Pipeline
	for _, sl := range g.sightLines {
		p, err := sl.GetPipeline(ref)
		if err != nil {
			continue
		}
		members = append(members, sl)
		pipelines = append(pipelines, p)
	}

	if len(pipelines) == 0 {
		return nil, fmt.Errorf("pipeline %s was not found for any sight-line in group %q", ref, g.Name())
	}

	kind := pipelines[0].Kind()
	for _, p := range pipelines[1:] {
		if p.Kind() != kind {
			return nil, fmt.Errorf("pipeline %s resolves to different kinds across sight-lines in group %q", ref, g.Name())
		}
	}

	fig := plot.New()
	colors := plotPalette(len(members))
	for i, sl := range members {
		if err := sl.plotSpectrumStyled(fig, ref, unit, colors[i]); err != nil {
			return nil, err
		}
	}

	if ymax > 0 {
		fig.Y.Max = ymax
	}
	fig.Title.Text = fmt.Sprintf("%s: %s", g.Name(), g.sharedTitle(ref, pipelines))
	fig.X.Label.Text = "wavelength (nm)"
	fig.Y.Label.Text = fmt.Sprintf("radiance (%s)", kind.UnitsLabel(unit))
	fig.Legend.Top = true
	return fig, nil
}

// sharedTitle derives the plot title key: a name reference is used as-is;
// an index reference uses the pipeline name when all resolved pipelines
// share one, falling back to the positional key.
func (g *group[T]) sharedTitle(ref PipelineRef, pipelines []*pipeline.Pipeline) string {
	if ref.named {
		return ref.name
	}
	shared := pipelines[0].Name()
	for _, p := range pipelines[1:] {
		if p.Name() != shared {
			return ref.String()
		}
	}
	if shared == "" {
		return ref.String()
	}
	return shared
}

// LineOfSightGroup aggregates plain sight-lines under one scene node.
type LineOfSightGroup struct {
	group[*SightLine]
}

// NewLineOfSightGroup creates an empty sight-line group.
func NewLineOfSightGroup(name string) *LineOfSightGroup {
	g := &LineOfSightGroup{}
	g.Node = NewNode(name)
	return g
}

// FibreOpticGroup aggregates fibre-optic observers under one scene node.
type FibreOpticGroup struct {
	group[*FibreOptic]
}

// NewFibreOpticGroup creates an empty fibre-optic group.
func NewFibreOpticGroup(name string) *FibreOpticGroup {
	g := &FibreOpticGroup{}
	g.Node = NewNode(name)
	return g
}

// AcceptanceAngles returns each fibre's sampling cone half-angle.
func (g *FibreOpticGroup) AcceptanceAngles() []float64 {
	values := make([]float64, len(g.sightLines))
	for i, f := range g.sightLines {
		values[i] = f.AcceptanceAngle()
	}
	return values
}

// SetAcceptanceAngle broadcasts one cone half-angle to every fibre.
func (g *FibreOpticGroup) SetAcceptanceAngle(degrees float64) error {
	for _, f := range g.sightLines {
		if err := f.SetAcceptanceAngle(degrees); err != nil {
			return err
		}
	}
	return nil
}

// SetEachAcceptanceAngle assigns cone half-angles positionally.
func (g *FibreOpticGroup) SetEachAcceptanceAngle(values []float64) error {
	if err := g.checkLength("acceptance_angle", len(values)); err != nil {
		return err
	}
	for i, f := range g.sightLines {
		if err := f.SetAcceptanceAngle(values[i]); err != nil {
			return err
		}
	}
	return nil
}

// Radii returns each fibre's tip radius.
func (g *FibreOpticGroup) Radii() []float64 {
	values := make([]float64, len(g.sightLines))
	for i, f := range g.sightLines {
		values[i] = f.Radius()
	}
	return values
}

// SetRadius broadcasts one tip radius to every fibre.
func (g *FibreOpticGroup) SetRadius(metres float64) error {
	for _, f := range g.sightLines {
		if err := f.SetRadius(metres); err != nil {
			return err
		}
	}
	return nil
}

// SetEachRadius assigns tip radii positionally.
func (g *FibreOpticGroup) SetEachRadius(values []float64) error {
	if err := g.checkLength("radius", len(values)); err != nil {
		return err
	}
	for i, f := range g.sightLines {
		if err := f.SetRadius(values[i]); err != nil {
			return err
		}
	}
	return nil
}
