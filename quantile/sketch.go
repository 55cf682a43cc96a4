// Package quantile implements a streaming quantile sketch based on
// Karnin, Lang, and Liberty, "Optimal quantile approximation in
// streams" (FOCS 2016): a cascade of leveled compactors backed by a
// weighted reservoir sampler, giving bounded-memory approximate rank
// queries with a commutative, associative merge.
//
// Grounded throughout on
// original_source/caesium-core/src/quantile/{kll,compactor,sampler,minmax,query}.rs,
// restyled in the doc-comment and error-handling idiom of
// github.com/apache/datasketches-go's kll package.
package quantile

import (
	"fmt"
	"io"
	"math/rand"
	"slices"

	"github.com/caesiumdb/caesium/codec"
)

// LevelLimit bounds how many levels a sketch may ever grow: the level
// of its lowest compactor plus its compactor count must stay below
// this value. At the design error bounds (delta=1e-8, epsilon=1.5e-2)
// this is reached only after ingesting a count far beyond any realistic
// single sketch, so hitting it indicates corrupt state rather than
// legitimate growth.
const LevelLimit = 64

// capacityAtDepth gives, for a compactor `depth` levels below the
// sketch's current top level, how many values it may hold before it
// must compact. Tuned for failure probability delta=1e-8 and maximum
// normalized rank error epsilon=1.5e-2: five top levels at capacity 200
// (k = (1/epsilon) * log(log(1/delta)) ~= 200), shrinking geometrically
// down to a floor of 2.
var capacityAtDepth = [LevelLimit]int{
	200, 200, 200, 200, 200, 27, 18, 12, 8, 6, 4, 3, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2,
}

// Config controls sketch construction. The zero value is the default
// configuration: sampling enabled, a package-seeded random source.
type Config struct {
	// Rand supplies randomness for the sampler and for the compactor's
	// random compaction phase. When nil, a new source seeded from
	// crypto-independent process entropy via math/rand's default
	// source is used; callers that need determinism (tests, replay)
	// should supply their own.
	Rand *rand.Rand

	// NoSampler disables absorption of emptied low-capacity compactors
	// into the sampler (Sketch.absorbLowerLevelsIntoSampler becomes a
	// no-op). This trades a small amount of extra memory for a sketch
	// whose level never advances past 0, which some callers find
	// easier to reason about. Grounded on the `nosampler` cargo
	// feature flag in original_source/caesium-core/src/quantile/kll.rs.
	NoSampler bool
}

// Sketch is a single mergeable KLL quantile sketch over u32 values.
// The zero value is not usable; construct with New.
type Sketch struct {
	cfg Config

	count    uint64
	level    uint8
	size     int
	capacity int
	minmax   minMax
	sampler  *sampler

	compactorCount int
	arena          []*compactor
	freeList       []int
	compactorMap   [LevelLimit]int // level -> arena index, -1 if absent
}

// New constructs an empty sketch with a single compactor at level 0.
func New(cfg Config) *Sketch {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	s := &Sketch{
		cfg:      cfg,
		capacity: capacityAtDepth[0],
		minmax:   newMinMax(),
		sampler:  newSampler(cfg.Rand),
	}
	for i := range s.compactorMap {
		s.compactorMap[i] = -1
	}
	idx := s.allocCompactor(newCompactor())
	s.compactorMap[0] = idx
	s.compactorCount = 1
	return s
}

func (s *Sketch) allocCompactor(c *compactor) int {
	if n := len(s.freeList); n > 0 {
		idx := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.arena[idx] = c
		return idx
	}
	s.arena = append(s.arena, c)
	return len(s.arena) - 1
}

func (s *Sketch) freeCompactor(idx int) {
	s.arena[idx] = nil
	s.freeList = append(s.freeList, idx)
}

// Count returns the number of values ever inserted into the sketch.
func (s *Sketch) Count() uint64 { return s.count }

// Size returns the number of items the sketch is currently retaining
// across all compactors (not counting the sampler's single pending
// slot).
func (s *Sketch) Size() int { return s.size }

// Min returns the smallest value ever inserted, and false if the
// sketch is empty.
func (s *Sketch) Min() (uint32, bool) { return s.minmax.Min() }

// Max returns the largest value ever inserted, and false if the
// sketch is empty.
func (s *Sketch) Max() (uint32, bool) { return s.minmax.Max() }

func (s *Sketch) topLevel() uint8 {
	return s.level + uint8(s.compactorCount) - 1
}

func (s *Sketch) compactorAt(level uint8) *compactor {
	idx := s.compactorMap[level]
	if idx < 0 {
		panic(fmt.Sprintf("quantile: no compactor at level %d", level))
	}
	return s.arena[idx]
}

func (s *Sketch) capacityAtLevel(level uint8) int {
	depth := s.topLevel() - level
	return capacityAtDepth[depth]
}

func (s *Sketch) calculateSize() int {
	total := 0
	for level := s.level; level <= s.topLevel(); level++ {
		total += s.compactorAt(level).size()
	}
	return total
}

func (s *Sketch) calculateCapacity() int {
	total := 0
	for level := s.level; level <= s.topLevel(); level++ {
		total += s.capacityAtLevel(level)
	}
	return total
}

func (s *Sketch) addCompactor() {
	newLevel := s.topLevel() + 1
	if newLevel >= LevelLimit {
		panic("quantile: cannot add compactor, level limit reached")
	}
	idx := s.allocCompactor(newCompactor())
	s.compactorMap[newLevel] = idx
	s.compactorCount++
	s.capacity = s.calculateCapacity()
}

// Insert adds a single value to the sketch.
func (s *Sketch) Insert(val uint32) {
	s.count++
	s.minmax.update(val)
	if sampled, ok := s.sampler.insert(val); ok {
		s.compactorAt(s.level).insert(sampled)
		s.size++
		s.compress()
	}
}

func (s *Sketch) compress() {
	for s.size > s.capacity {
		s.compactLevels()
	}
	s.absorbLowerLevelsIntoSampler()
}

func (s *Sketch) compactLevels() {
	var overflow []uint32
	for level := s.level; level <= s.topLevel(); level++ {
		capacity := s.capacityAtLevel(level)
		c := s.compactorAt(level)
		if len(overflow) > 0 {
			c.insertSorted(overflow)
			overflow = nil
			break
		}
		if c.size() > capacity {
			c.compact(&overflow, s.cfg.Rand)
		}
	}
	if len(overflow) > 0 {
		s.addCompactor()
		s.compactorAt(s.topLevel()).insertSorted(overflow)
	}
	s.size = s.calculateSize()
	s.capacity = s.calculateCapacity()
}

func (s *Sketch) absorbLowerLevelsIntoSampler() {
	if s.cfg.NoSampler {
		return
	}
	for level := s.level; level <= s.topLevel(); level++ {
		capacity := s.capacityAtLevel(level)
		c := s.compactorAt(level)
		if capacity == 2 && c.size() == 0 {
			s.level++
			s.compactorCount--
			idx := s.compactorMap[level]
			s.compactorMap[level] = -1
			s.freeCompactor(idx)
			s.size = s.calculateSize()
			s.capacity = s.calculateCapacity()
			s.sampler.setMaxWeight(uint64(1) << s.level)
		} else {
			break
		}
	}
}

// Merge combines s and other and returns the merged sketch, which is
// whichever of the two has the higher level (s on a tie); the other
// one is consumed. The merged count, min and max do not depend on
// argument order or grouping; the retained values do, through the
// random choices of the sampler and of compaction, so quantile answers
// agree only within the error bound.
func (s *Sketch) Merge(other *Sketch) *Sketch {
	survivor, victim := s, other
	if other.level > s.level {
		survivor, victim = other, s
	}

	var values []uint32

	if w := victim.sampler.storedWeight(); w > 0 {
		if v, ok := survivor.sampler.insertWeighted(victim.sampler.storedValueUnsafe(), w); ok {
			values = append(values, v)
		}
	}

	upper := victim.topLevel() + 1
	if survivor.level < upper {
		upper = survivor.level
	}
	for level := victim.level; level < upper; level++ {
		weight := uint64(1) << level
		for _, val := range victim.compactorAt(level).values() {
			if v, ok := survivor.sampler.insertWeighted(val, weight); ok {
				values = append(values, v)
			}
		}
	}

	slices.Sort(values)
	survivor.compactorAt(survivor.level).insertSorted(values)

	numToAdd := 0
	if victim.topLevel() > survivor.topLevel() {
		numToAdd = int(victim.topLevel() - survivor.topLevel())
	}
	for i := 0; i < numToAdd; i++ {
		survivor.addCompactor()
	}
	for level := survivor.level; level <= victim.topLevel(); level++ {
		survivor.compactorAt(level).insertFromOther(victim.compactorAt(level))
	}

	survivor.minmax.updateFromOther(victim.minmax)
	survivor.count += victim.count

	survivor.size = survivor.calculateSize()
	survivor.compress()

	return survivor
}

// Clone returns a deep copy of the sketch.
func (s *Sketch) Clone() *Sketch {
	cp := &Sketch{
		cfg:            s.cfg,
		count:          s.count,
		level:          s.level,
		size:           s.size,
		capacity:       s.capacity,
		minmax:         s.minmax,
		sampler:        s.sampler.clone(),
		compactorCount: s.compactorCount,
	}
	for i := range cp.compactorMap {
		cp.compactorMap[i] = -1
	}
	for level := s.level; level <= s.topLevel(); level++ {
		idx := cp.allocCompactor(s.compactorAt(level).clone())
		cp.compactorMap[level] = idx
	}
	return cp
}

// ToWeightedValues flattens the sketch into its raw (weight, value)
// pairs: the sampler's pending value (if any) plus every retained
// compactor value at its level's implicit weight (2^level). This is
// the input WeightedQuerySketch consumes to answer rank queries.
func (s *Sketch) ToWeightedValues() []WeightedValue {
	data := make([]WeightedValue, 0, s.size+1)
	if w := s.sampler.storedWeight(); w > 0 {
		data = append(data, WeightedValue{Weight: w, Value: s.sampler.storedValueUnsafe()})
	}
	for level := s.level; level <= s.topLevel(); level++ {
		weight := uint64(1) << level
		for _, v := range s.compactorAt(level).values() {
			data = append(data, WeightedValue{Weight: weight, Value: v})
		}
	}
	return data
}

// ToQuerySketch builds an immutable WeightedQuerySketch snapshot of the
// sketch's current contents, ready to answer phi-quantile queries. The
// snapshot does not track s: later inserts or merges into s have no
// effect on it.
func (s *Sketch) ToQuerySketch() *WeightedQuerySketch {
	return NewWeightedQuerySketch(s.count, s.minmax, s.ToWeightedValues())
}

// Encode writes count, level, minmax, sampler state, compactor count,
// and each compactor in ascending level order.
func (s *Sketch) Encode(w io.Writer) error {
	if err := codec.WriteLen(w, int(s.count)); err != nil {
		return err
	}
	if err := codec.WriteUint8(w, s.level); err != nil {
		return err
	}
	if err := s.minmax.encode(w); err != nil {
		return err
	}
	if err := s.sampler.encode(w); err != nil {
		return err
	}
	if err := codec.WriteLen(w, s.compactorCount); err != nil {
		return err
	}
	for level := s.level; level <= s.topLevel(); level++ {
		if err := s.compactorAt(level).encode(w); err != nil {
			return err
		}
	}
	return nil
}

// Decode reads a sketch previously written by Encode. It rejects
// level+compactorCount >= LevelLimit and a compactor count below 1 as
// malformed (ErrFormat).
func Decode(r io.Reader, cfg Config) (*Sketch, error) {
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(rand.Int63()))
	}
	count, err := codec.ReadLen(r)
	if err != nil {
		return nil, err
	}
	level, err := codec.ReadUint8(r)
	if err != nil {
		return nil, err
	}
	mm, err := decodeMinMax(r)
	if err != nil {
		return nil, err
	}
	smp, err := decodeSampler(r, cfg.Rand)
	if err != nil {
		return nil, err
	}
	numCompactors, err := codec.ReadLen(r)
	if err != nil {
		return nil, err
	}
	if int(level)+numCompactors >= LevelLimit {
		return nil, fmt.Errorf("%w: level %d plus compactor count %d exceeds level limit", codec.ErrFormat, level, numCompactors)
	}
	if numCompactors < 1 {
		return nil, fmt.Errorf("%w: sketch must have at least one compactor", codec.ErrFormat)
	}

	s := &Sketch{
		cfg:            cfg,
		count:          uint64(count),
		level:          level,
		minmax:         mm,
		sampler:        smp,
		compactorCount: numCompactors,
	}
	for i := range s.compactorMap {
		s.compactorMap[i] = -1
	}
	for i := 0; i < numCompactors; i++ {
		c, err := decodeCompactor(r)
		if err != nil {
			return nil, err
		}
		idx := s.allocCompactor(c)
		s.compactorMap[level+uint8(i)] = idx
	}
	s.size = s.calculateSize()
	s.capacity = s.calculateCapacity()
	return s, nil
}
