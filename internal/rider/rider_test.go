package rider

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/rider-sim/internal/geo"
	"github.com/ukydev/rider-sim/internal/graph"
	"github.com/ukydev/rider-sim/internal/hazard"
	"github.com/ukydev/rider-sim/internal/profile"
)

func steadyProfile(speed float64) profile.Profile {
	return profile.Profile{
		RiskTolerance:   0.3,
		PreferredSpeed:  speed,
		BatteryLevel:    100,
		FatigueRate:     0.0001,
		NightRiding:     true,
		ExperienceLevel: 0.5,
	}
}

func gridWorld(t *testing.T, signalized bool) (*graph.Network, World) {
	t.Helper()
	spec := graph.GridSpec{Rows: 2, Cols: 3, Spacing: 100}
	if signalized {
		spec.Signalized = func(int, int) bool { return true }
	}
	n, err := graph.BuildGrid(spec)
	require.NoError(t, err)
	return n, World{
		Roads:         n.Roads(),
		Intersections: n.Intersections(),
		Hazards:       hazard.NewRegistry(),
		TimeOfDay:     12,
		Rand:          rand.New(rand.NewSource(1)),
	}
}

func straightWorld(t *testing.T, length, limit float64, lanes int) World {
	t.Helper()
	n := graph.NewNetwork()
	require.NoError(t, n.AddIntersection(graph.NewIntersection("A", geo.Pos(0, 0), false)))
	require.NoError(t, n.AddIntersection(graph.NewIntersection("B", geo.Pos(length, 0), false)))
	require.NoError(t, n.AddRoad(graph.Road{ID: "A-B", StartIntersection: "A", EndIntersection: "B", Lanes: lanes, SpeedLimit: limit, Direction: graph.East}))
	return World{
		Roads:         n.Roads(),
		Intersections: n.Intersections(),
		Hazards:       hazard.NewRegistry(),
		TimeOfDay:     12,
		Rand:          rand.New(rand.NewSource(1)),
	}
}

func TestDecide_HazardBeforeFollowing(t *testing.T) {
	r := New("r1", profile.Commuter, steadyProfile(50), "A", geo.Pos(0, 0), "B", []string{"A-B"})
	r.Speed = 50
	r.DistanceOnRoad = 90

	road := graph.Road{ID: "A-B", Length: 100, Lanes: 2, SpeedLimit: 50}
	critical := hazard.Hazard{ID: "h", Severity: hazard.Critical, IsActive: true}
	ahead := &Snapshot{ID: "r2", CurrentRoad: "A-B", Speed: 10}

	s := Situation{Road: road, Hazards: []hazard.Hazard{critical}, Ahead: ahead, Gap: 1, CanPass: false, TimeOfDay: 12}
	assert.Equal(t, AvoidHazard, r.Decide(s))

	s.Hazards = []hazard.Hazard{{ID: "low", Severity: hazard.High, IsActive: true}}
	assert.Equal(t, StopAtLight, r.Decide(s))

	s.CanPass = true
	assert.Equal(t, EmergencyBrake, r.Decide(s))

	// below the stop zone a red light does not stop the rider
	s.CanPass = false
	r.DistanceOnRoad = 50
	assert.Equal(t, EmergencyBrake, r.Decide(s))
}

func TestDecide_FollowOrOvertake(t *testing.T) {
	p := steadyProfile(50)
	p.RiskTolerance = 0.8
	p.ExperienceLevel = 0
	r := New("r1", profile.DeliveryRider, p, "A", geo.Pos(0, 0), "B", nil)
	r.Speed = 50
	require.InDelta(t, 10.0, r.SafeFollowingDistance(), 1e-9)

	ahead := &Snapshot{ID: "r2", Speed: 20}
	s := Situation{Road: graph.Road{Length: 1000, Lanes: 2, SpeedLimit: 60}, Ahead: ahead, Gap: 7, CanPass: true, TimeOfDay: 12}
	assert.Equal(t, Overtake, r.Decide(s))

	s.Road.Lanes = 1
	assert.Equal(t, Follow, r.Decide(s))

	s.Road.Lanes = 2
	r.State.CurrentFatigue = 0.75
	assert.Equal(t, EmergencyBrake, r.Decide(s), "fatigue widens the safe gap")

	r.State.CurrentFatigue = 0
	r.Profile.RiskTolerance = 0.5
	assert.Equal(t, Follow, r.Decide(s))

	s.Gap = 30
	assert.Equal(t, Cruise, r.Decide(s))

	r.Speed = 45
	assert.Equal(t, Accelerate, r.Decide(s))
}

func TestSafeFollowingDistance(t *testing.T) {
	p := steadyProfile(50)
	p.ExperienceLevel = 1
	r := New("r1", profile.Commuter, p, "A", geo.Pos(0, 0), "B", nil)
	r.Speed = 100
	r.State.CurrentFatigue = 0.5
	// 10 * 2 * 0.7 * 1.5
	assert.InDelta(t, 21.0, r.SafeFollowingDistance(), 1e-9)
}

func TestTargetSpeed(t *testing.T) {
	p := steadyProfile(50)
	p.NightRiding = false
	r := New("r1", profile.EBike, p, "A", geo.Pos(0, 0), "B", nil)
	road := graph.Road{SpeedLimit: 60}

	assert.InDelta(t, 50.0, r.TargetSpeed(road, 12), 1e-9)
	assert.InDelta(t, 35.0, r.TargetSpeed(road, 22), 1e-9)
	assert.InDelta(t, 35.0, r.TargetSpeed(road, 3), 1e-9)

	road.SpeedLimit = 20
	assert.InDelta(t, 22.0, r.TargetSpeed(road, 12), 1e-9)

	assert.True(t, IsNight(5.9))
	assert.False(t, IsNight(6))
	assert.False(t, IsNight(20))
	assert.True(t, IsNight(20.5))
}

func TestUpdate_SpeedLimitConvergence(t *testing.T) {
	w := straightWorld(t, 10000, 40, 1)
	p := steadyProfile(80)
	p.FatigueRate = 0
	r := New("r1", profile.PersonalMotorcycle, p, "A", geo.Pos(0, 0), "B", []string{"A-B"})

	for i := 0; i < 120; i++ {
		require.NoError(t, r.Update(0.5, w, nil))
		if r.LastDecision == Accelerate {
			assert.LessOrEqual(t, r.Speed, 44.0+1e-9)
		}
		if i > 20 {
			assert.InDelta(t, 44.0, r.Speed, 44*0.05+1e-9)
		}
	}
	assert.False(t, r.HasReachedDestination)
}

func TestUpdate_CruiseJitterReproducible(t *testing.T) {
	run := func() []float64 {
		w := straightWorld(t, 10000, 60, 1)
		w.Rand = rand.New(rand.NewSource(99))
		r := New("r1", profile.Commuter, steadyProfile(45), "A", geo.Pos(0, 0), "B", []string{"A-B"})
		var speeds []float64
		for i := 0; i < 40; i++ {
			require.NoError(t, r.Update(1, w, nil))
			speeds = append(speeds, r.Speed)
		}
		return speeds
	}
	assert.Equal(t, run(), run())
}

func TestUpdate_ReachesDestination(t *testing.T) {
	n, w := gridWorld(t, false)
	path := n.ShortestPath("I00", "I12")
	require.Len(t, path, 3)

	r := New("r1", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I12", path)
	ticks := 0
	for !r.HasReachedDestination && ticks < 500 {
		require.NoError(t, r.Update(1, w, nil))
		ticks++
	}
	require.True(t, r.HasReachedDestination)
	assert.Equal(t, 3, r.RouteIndex)
	assert.Empty(t, r.CurrentRoad)
	assert.Equal(t, geo.Pos(200, 100), r.Position)
	assert.GreaterOrEqual(t, r.TotalDistance, 300.0)
	assert.InDelta(t, float64(ticks), r.TotalTime, 1e-9)

	// finished riders are frozen
	before := *r
	require.NoError(t, r.Update(1, w, nil))
	assert.Equal(t, before.TotalTime, r.TotalTime)
	assert.True(t, r.HasReachedDestination)
}

func TestUpdate_StopsAtRedLight(t *testing.T) {
	_, w := gridWorld(t, true)
	ix := w.Intersections["I01"]
	require.False(t, ix.CanVehiclePass(graph.East))

	r := New("r1", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I01", []string{"I00-I01"})
	r.CurrentRoad = "I00-I01"
	r.TargetIntersection = "I01"
	r.DistanceOnRoad = 85
	r.Position = geo.Pos(85, 0)
	r.Speed = 20

	require.NoError(t, r.Update(0.5, w, nil))
	assert.Equal(t, StopAtLight, r.LastDecision)
	assert.InDelta(t, 7.5, r.Speed, 1e-9)
	assert.True(t, r.IsWaiting)
	assert.Equal(t, 0.5, r.WaitTime)
	assert.Equal(t, []string{"r1"}, ix.Queue(graph.East))
}

func TestUpdate_AvoidsCriticalHazard(t *testing.T) {
	_, w := gridWorld(t, false)
	w.Hazards.Add(hazard.Hazard{
		ID: "works", Type: hazard.ConstructionZone, Severity: hazard.Critical,
		Position: geo.Pos(30, 0), Radius: 15, AffectedRoad: "I00-I01", IsActive: true,
	})

	r := New("r1", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I01", []string{"I00-I01"})
	r.Speed = 30
	require.NoError(t, r.Update(1, w, nil))

	assert.Equal(t, AvoidHazard, r.LastDecision)
	assert.InDelta(t, 18.0, r.Speed, 1e-9)
	assert.Equal(t, 1, r.State.HazardsAvoided)
	assert.Greater(t, r.State.Stress, 0.0)

	// the rider keeps crawling past the hazard
	for i := 0; i < 200 && !r.HasReachedDestination; i++ {
		require.NoError(t, r.Update(1, w, nil))
		assert.GreaterOrEqual(t, r.Speed, 5.0)
	}
	assert.True(t, r.HasReachedDestination)
}

func TestUpdate_FollowsRiderAhead(t *testing.T) {
	_, w := gridWorld(t, false)
	p := steadyProfile(40)
	r := New("r1", profile.Commuter, p, "I00", geo.Pos(0, 0), "I01", []string{"I00-I01"})
	r.CurrentRoad = "I00-I01"
	r.Position = geo.Pos(10, 0)
	r.DistanceOnRoad = 10
	r.Speed = 40

	// safe gap = 10 * 0.8 * 0.85 * 1 = 6.8m
	others := []Snapshot{
		{ID: "r1", CurrentRoad: "I00-I01", Position: geo.Pos(10, 0)},
		{ID: "slow", CurrentRoad: "I00-I01", Position: geo.Pos(15, 0), Speed: 10},
		{ID: "other-road", CurrentRoad: "I01-I00", Position: geo.Pos(12, 0), Speed: 0},
		{ID: "behind", CurrentRoad: "I00-I01", Position: geo.Pos(5, 0), Speed: 0},
	}
	require.NoError(t, r.Update(0.1, w, others))
	assert.Equal(t, Follow, r.LastDecision)
	assert.InDelta(t, 9.0, r.Speed, 1e-9)
	assert.True(t, r.IsWaiting)
}

func TestUpdate_EmergencyBrake(t *testing.T) {
	_, w := gridWorld(t, false)
	r := New("r1", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I01", []string{"I00-I01"})
	r.CurrentRoad = "I00-I01"
	r.Position = geo.Pos(10, 0)
	r.DistanceOnRoad = 10
	r.Speed = 40

	others := []Snapshot{{ID: "stopped", CurrentRoad: "I00-I01", Position: geo.Pos(12, 0)}}
	require.NoError(t, r.Update(0.1, w, others))
	assert.Equal(t, EmergencyBrake, r.LastDecision)
	assert.InDelta(t, 35.0, r.Speed, 1e-9)
	assert.Equal(t, 1, r.NearMissCount)
	assert.Greater(t, r.State.Stress, 0.05)
}

func TestUpdate_Overtake(t *testing.T) {
	w := straightWorld(t, 1000, 60, 2)
	p := steadyProfile(50)
	p.RiskTolerance = 0.8
	p.ExperienceLevel = 0
	r := New("r1", profile.DeliveryRider, p, "A", geo.Pos(0, 0), "B", []string{"A-B"})
	r.CurrentRoad = "A-B"
	r.Speed = 50

	others := []Snapshot{{ID: "slow", CurrentRoad: "A-B", Position: geo.Pos(7, 0), Speed: 20}}
	require.NoError(t, r.Update(0.1, w, others))
	assert.Equal(t, Overtake, r.LastDecision)
	assert.InDelta(t, 54.0, r.Speed, 1e-9)
	assert.Equal(t, 1, r.State.RiskyManeuvers)
	assert.Equal(t, 98.0, r.State.SafetyScore)
}

func TestUpdate_RoadNotFound(t *testing.T) {
	_, w := gridWorld(t, false)

	r := New("r1", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I01", []string{"ghost"})
	err := r.Update(1, w, nil)
	assert.True(t, errors.Is(err, graph.ErrRoadNotFound))

	r = New("r2", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I01", []string{"I00-I01"})
	r.CurrentRoad = "vanished"
	err = r.Update(1, w, nil)
	assert.True(t, errors.Is(err, graph.ErrRoadNotFound))
}

func TestUpdate_EmptyRouteIdles(t *testing.T) {
	_, w := gridWorld(t, false)
	r := New("r1", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I00", nil)
	require.NoError(t, r.Update(1, w, nil))
	assert.False(t, r.HasReachedDestination)
	assert.Equal(t, geo.Pos(0, 0), r.Position)
	assert.Zero(t, r.Speed)
}

func TestUpdate_BatteryOnlyForElectric(t *testing.T) {
	w := straightWorld(t, 10000, 50, 1)

	ebike := New("e", profile.EBike, steadyProfile(30), "A", geo.Pos(0, 0), "B", []string{"A-B"})
	moto := New("m", profile.PersonalMotorcycle, steadyProfile(30), "A", geo.Pos(0, 0), "B", []string{"A-B"})
	for i := 0; i < 30; i++ {
		require.NoError(t, ebike.Update(1, w, nil))
		require.NoError(t, moto.Update(1, w, nil))
	}
	assert.Greater(t, ebike.State.BatteryUsed, 0.0)
	assert.Zero(t, moto.State.BatteryUsed)
}

func TestUpdate_LowBatteryDampsSpeed(t *testing.T) {
	w := straightWorld(t, 10000, 50, 1)
	p := steadyProfile(30)
	p.BatteryLevel = 10
	p.FatigueRate = 0
	r := New("e", profile.Scooter, p, "A", geo.Pos(0, 0), "B", []string{"A-B"})
	r.CurrentRoad = "A-B"
	r.Speed = 20

	require.NoError(t, r.Update(0.1, w, nil))
	// 20 * 0.7 then accelerate by 30 * 0.1
	assert.Equal(t, Accelerate, r.LastDecision)
	assert.InDelta(t, 17.0, r.Speed, 1e-6)
}

func TestUpdate_FatigueDamping(t *testing.T) {
	w := straightWorld(t, 10000, 50, 1)
	r := New("r1", profile.Commuter, steadyProfile(30), "A", geo.Pos(0, 0), "B", []string{"A-B"})
	r.CurrentRoad = "A-B"
	r.Speed = 20
	r.State.CurrentFatigue = 0.9

	require.NoError(t, r.Update(0.1, w, nil))
	// 20 * 0.9 then accelerate by 30 * (1 - fatigue) * 0.1
	fatigue := r.State.CurrentFatigue
	assert.InDelta(t, 18+30*(1-fatigue)*0.1, r.Speed, 1e-9)
}

func TestUpdate_BoundedScalars(t *testing.T) {
	n, w := gridWorld(t, true)
	w.Hazards.Add(hazard.Hazard{ID: "pit", Type: hazard.Pothole, Severity: hazard.High, Position: geo.Pos(100, 50), Radius: 20, AffectedRoad: "I01-I11", IsActive: true})
	w.Hazards.Add(hazard.Hazard{ID: "flood", Type: hazard.FloodedArea, Severity: hazard.Critical, Position: geo.Pos(150, 0), Radius: 10, IsActive: true})

	rng := rand.New(rand.NewSource(5))
	ids := n.IntersectionIDs()
	var riders []*Rider
	for i := 0; i < 12; i++ {
		typ := profile.RandomType(rng)
		p := profile.Generate(typ, rng)
		p.FatigueRate *= 500 // push fatigue to its bound within the run
		from := ids[i%len(ids)]
		to := ids[(i+3)%len(ids)]
		start, _ := n.Intersection(from)
		riders = append(riders, New(string(rune('a'+i)), typ, p, from, start.Position, to, n.ShortestPath(from, to)))
	}

	for tick := 0; tick < 600; tick++ {
		for _, ix := range n.Intersections() {
			ix.AdvanceSignal(0.5)
		}
		snaps := make([]Snapshot, len(riders))
		for i, r := range riders {
			snaps[i] = r.Snapshot()
		}
		for _, r := range riders {
			require.NoError(t, r.Update(0.5, w, snaps))
			assert.GreaterOrEqual(t, r.State.CurrentFatigue, 0.0)
			assert.LessOrEqual(t, r.State.CurrentFatigue, 1.0)
			assert.GreaterOrEqual(t, r.State.Stress, 0.0)
			assert.LessOrEqual(t, r.State.Stress, 1.0)
			assert.GreaterOrEqual(t, r.Speed, 0.0)
			assert.GreaterOrEqual(t, r.State.SafetyScore, 0.0)
			assert.LessOrEqual(t, r.State.SafetyScore, 100.0)
			assert.GreaterOrEqual(t, r.RouteIndex, 0)
			assert.LessOrEqual(t, r.RouteIndex, len(r.Route))
		}
	}
}

func TestSetRoute(t *testing.T) {
	r := New("r1", profile.Commuter, steadyProfile(40), "I00", geo.Pos(0, 0), "I12", []string{"a", "b"})
	r.CurrentRoad = "a"
	r.SetRoute([]string{"c"})
	assert.True(t, r.IsRerouted)
	assert.Equal(t, []string{"a", "c"}, r.RemainingRoute())
}

func TestDecisionString(t *testing.T) {
	for _, d := range AllDecisions {
		assert.NotEqual(t, "unknown", d.String())
	}
}

func TestUpdateStress(t *testing.T) {
	two := []hazard.Hazard{
		{ID: "h1", Severity: hazard.Low, IsActive: true},
		{ID: "h2", Severity: hazard.High, IsActive: true},
	}
	tests := []struct {
		name    string
		dt      float64
		hazards []hazard.Hazard
		blocked bool
		canPass bool
		waiting bool
		want    float64
	}{
		{name: "calm decays", dt: 1, canPass: true, want: 0.49},
		{name: "decay scales with dt", dt: 5, canPass: true, want: 0.45},
		{name: "two hazards", dt: 1, hazards: two, canPass: true, want: 0.59},
		{name: "blocked with no room to pass", dt: 1, blocked: true, want: 0.51},
		{name: "blocked but can pass", dt: 1, blocked: true, canPass: true, want: 0.49},
		{name: "waiting", dt: 1, canPass: true, waiting: true, want: 0.50},
		{name: "everything at once", dt: 1, hazards: two, blocked: true, waiting: true, want: 0.62},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New("r1", profile.Commuter, steadyProfile(30), "A", geo.Pos(0, 0), "B", []string{"A-B"})
			r.State.Stress = 0.5
			r.IsWaiting = tt.waiting

			r.updateStress(tt.dt, tt.hazards, tt.blocked, tt.canPass)
			assert.InDelta(t, tt.want, r.State.Stress, 1e-9)
		})
	}
}

func TestUpdateStress_Clamped(t *testing.T) {
	r := New("r1", profile.Commuter, steadyProfile(30), "A", geo.Pos(0, 0), "B", []string{"A-B"})
	r.updateStress(10, nil, false, true)
	assert.Zero(t, r.State.Stress)

	r.State.Stress = 0.99
	r.updateStress(1, make([]hazard.Hazard, 5), true, false)
	assert.Equal(t, 1.0, r.State.Stress)
}

func TestApply_TakeShortcut(t *testing.T) {
	w := straightWorld(t, 100, 30, 1)
	road, ix := w.Roads["A-B"], w.Intersections["B"]
	require.NotNil(t, ix)

	r := New("r1", profile.Commuter, steadyProfile(30), "A", geo.Pos(0, 0), "B", []string{"A-B"})
	r.Speed = 30

	r.apply(TakeShortcut, 1, Situation{Road: road, CanPass: true, TimeOfDay: 12}, ix, nil)
	assert.InDelta(t, 0.5, r.State.TimeSaved, 1e-9)
	assert.Equal(t, 30.0, r.Speed)
	assert.False(t, r.IsWaiting)

	r.apply(TakeShortcut, 1, Situation{Road: road, CanPass: true, TimeOfDay: 12}, ix, nil)
	assert.InDelta(t, 1.0, r.State.TimeSaved, 1e-9)
	assert.Equal(t, 30.0, r.Speed)
}
