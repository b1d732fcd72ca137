package state

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/itsatony/homehub/internal/errors"
	"github.com/itsatony/homehub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int             { return &v }
func floatPtr(v float64) *float64   { return &v }
func fixedClock(t time.Time) Option { return WithClock(func() time.Time { return t }) }

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()

	full := s.FullState()
	assert.Equal(t, models.LastSeenPending, full.LastSeen)
	assert.Zero(t, full.DoorOpen)
	assert.Zero(t, full.GarageOpen)
	assert.Zero(t, full.UltrasonicActive)
	assert.Equal(t, [models.LedCount]int{}, full.LedIntensities)
}

func TestMergeSensorDataPartial(t *testing.T) {
	clock := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	s := NewStore(WithClock(func() time.Time { return clock }))

	s.MergeSensorData(models.SensorUpdate{Temperature: floatPtr(21.5), Humidity: floatPtr(55)})
	before := s.SensorSnapshot()
	require.Equal(t, "10:00:00", before.LastSeen)

	clock = clock.Add(90 * time.Second)
	s.MergeSensorData(models.SensorUpdate{Distance: intPtr(42)})
	after := s.SensorSnapshot()

	assert.Equal(t, 42, after.Distance)
	assert.Equal(t, 21.5, after.Temperature)
	assert.Equal(t, 55.0, after.Humidity)
	assert.Equal(t, "10:01:30", after.LastSeen)
	assert.GreaterOrEqual(t, after.LastSeen, before.LastSeen)
}

func TestMergeSensorDataEmptyUpdateStillStamps(t *testing.T) {
	s := NewStore(fixedClock(time.Date(2026, 1, 2, 8, 9, 10, 0, time.UTC)))

	got := s.MergeSensorData(models.SensorUpdate{})
	assert.Equal(t, "08:09:10", got.LastSeen)
	assert.Zero(t, got.Distance)
}

func TestDoorProbeKeepsValue(t *testing.T) {
	s := NewStore()

	c, err := s.SetDoor(intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, c.DoorOpen)

	c, err = s.SetDoor(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.DoorOpen)
	assert.Equal(t, uint64(1), c.Revision)
	assert.Equal(t, c, s.ControlSnapshot())
}

func TestGarageIndependentOfDoor(t *testing.T) {
	s := NewStore()

	_, err := s.SetGarage(intPtr(1))
	require.NoError(t, err)

	c := s.ControlSnapshot()
	assert.Equal(t, 1, c.GarageOpen)
	assert.Equal(t, 0, c.DoorOpen)
}

func TestFlagsRejectValuesOtherThanZeroOrOne(t *testing.T) {
	s := NewStore()
	_, err := s.SetDoor(intPtr(1))
	require.NoError(t, err)
	rev := s.ControlSnapshot().Revision

	c, err := s.SetDoor(intPtr(7))
	assert.True(t, errors.IsOutOfRange(err))
	assert.Equal(t, 1, c.DoorOpen)

	_, err = s.SetGarage(intPtr(-1))
	assert.True(t, errors.IsOutOfRange(err))

	_, err = s.SetUltrasonic(intPtr(2))
	assert.True(t, errors.IsOutOfRange(err))

	c = s.ControlSnapshot()
	assert.Equal(t, 1, c.DoorOpen)
	assert.Equal(t, 0, c.GarageOpen)
	assert.Equal(t, 0, c.UltrasonicActive)
	assert.Equal(t, rev, c.Revision)
}

func TestUltrasonicToggleAndSet(t *testing.T) {
	s := NewStore()

	c, err := s.SetUltrasonic(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, c.UltrasonicActive)

	c, err = s.SetUltrasonic(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.UltrasonicActive)

	c, err = s.SetUltrasonic(intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, c.UltrasonicActive)

	c, err = s.SetUltrasonic(intPtr(1))
	require.NoError(t, err)
	assert.Equal(t, 1, c.UltrasonicActive)
	assert.Equal(t, uint64(4), c.Revision)
}

func TestSetLedOutOfRangeLeavesStateUnchanged(t *testing.T) {
	s := NewStore()
	_, err := s.SetLed(2, 40)
	require.NoError(t, err)
	before := s.ControlSnapshot()

	for _, tc := range []struct{ index, intensity int }{
		{8, 50},
		{0, 101},
		{-1, 10},
		{3, -5},
	} {
		_, err := s.SetLed(tc.index, tc.intensity)
		assert.True(t, errors.IsOutOfRange(err), "SetLed(%d, %d)", tc.index, tc.intensity)
	}

	assert.Equal(t, before, s.ControlSnapshot())
}

func TestSetLedReturnsStateAfterWrite(t *testing.T) {
	s := NewStore()

	c, err := s.SetLed(3, 75)
	require.NoError(t, err)
	assert.Equal(t, [models.LedCount]int{0, 0, 0, 75, 0, 0, 0, 0}, c.LedIntensities)
	assert.Equal(t, uint64(1), c.Revision)
	assert.Equal(t, c, s.ControlSnapshot())
}

func TestMutatorResultDescribesItsOwnWrite(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	results := make(chan models.ControlState, 8*100)

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c, err := s.SetLed(w, i)
				if err != nil {
					t.Errorf("SetLed: %v", err)
					return
				}
				if c.LedIntensities[w] != i {
					t.Errorf("result for led %d carries %d, want %d", w, c.LedIntensities[w], i)
				}
				results <- c
			}
		}(w)
	}
	wg.Wait()
	close(results)

	seen := make(map[uint64]bool)
	for c := range results {
		assert.False(t, seen[c.Revision], "revision %d returned twice", c.Revision)
		seen[c.Revision] = true
	}
	assert.Len(t, seen, 8*100)
}

func TestControlSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	snap := s.ControlSnapshot()
	snap.LedIntensities[0] = 99
	snap.DoorOpen = 1

	fresh := s.ControlSnapshot()
	assert.Zero(t, fresh.LedIntensities[0])
	assert.Zero(t, fresh.DoorOpen)
}

func TestRevisionCountsSuccessfulControlWrites(t *testing.T) {
	s := NewStore()

	_, _ = s.SetDoor(intPtr(1))
	_, _ = s.SetDoor(nil)
	_, _ = s.SetLed(1, 10)
	_, _ = s.SetLed(9, 10)
	_, _ = s.SetUltrasonic(nil)

	assert.Equal(t, uint64(3), s.ControlSnapshot().Revision)
}

func TestConcurrentLedWritesNeverTear(t *testing.T) {
	s := NewStore()
	const writers = 16
	const rounds = 500

	var wg sync.WaitGroup
	stop := make(chan struct{})
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			for i, v := range s.ControlSnapshot().LedIntensities {
				if v < 0 || v > models.LedMaxIntensity {
					t.Errorf("led %d read torn value %d", i, v)
					return
				}
			}
		}
	}()

	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, err := s.SetLed((w+r)%models.LedCount, (w*r)%(models.LedMaxIntensity+1))
				if err != nil {
					t.Errorf("SetLed: %v", err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(stop)
	<-readerDone

	// A final write per channel is the value every reader sees afterwards.
	for i := 0; i < models.LedCount; i++ {
		_, err := s.SetLed(i, i*10)
		require.NoError(t, err)
	}
	assert.Equal(t, [models.LedCount]int{0, 10, 20, 30, 40, 50, 60, 70}, s.ControlSnapshot().LedIntensities)
	assert.Equal(t, uint64(writers*rounds+models.LedCount), s.ControlSnapshot().Revision)
}

// Every writer sets door, garage, a LED and the distance to the same marker.
// An atomic FullState must see the same marker in all four places.
func TestFullStateIsAtomicAcrossMutators(t *testing.T) {
	s := NewStore()

	write := func(marker int) {
		s.mu.Lock()
		s.sensor.Distance = marker
		s.control.DoorOpen = marker % 2
		s.control.GarageOpen = marker % 2
		s.control.LedIntensities[0] = marker % (models.LedMaxIntensity + 1)
		s.mu.Unlock()
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				write(w*1000 + i)
			}
		}(w)
	}

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				full := s.FullState()
				m := full.Distance
				if full.DoorOpen != m%2 || full.GarageOpen != m%2 || full.LedIntensities[0] != m%(models.LedMaxIntensity+1) {
					t.Errorf("mixed snapshot: distance=%d door=%d garage=%d led0=%d",
						m, full.DoorOpen, full.GarageOpen, full.LedIntensities[0])
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestConcurrentPublicMutatorsKeepInvariants(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, _ = s.SetDoor(intPtr(i % 2))
				_, _ = s.SetGarage(intPtr((i + w) % 2))
				_, _ = s.SetUltrasonic(nil)
				s.MergeSensorData(models.SensorUpdate{Distance: intPtr(i)})
				full := s.FullState()
				for _, flag := range []int{full.DoorOpen, full.GarageOpen, full.UltrasonicActive} {
					if flag != 0 && flag != 1 {
						t.Errorf("flag escaped {0,1}: %d", flag)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()
}

func TestFullStateOnlyMovesForwardUnderPublicMutators(t *testing.T) {
	s := NewStore()
	const rounds = 300
	var wg sync.WaitGroup

	// Each writer drives one field upward, so every later read must see each
	// field at or above what an earlier read saw.
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 1; i <= rounds; i++ {
			s.MergeSensorData(models.SensorUpdate{Distance: intPtr(i)})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i <= models.LedMaxIntensity; i++ {
			_, _ = s.SetLed(0, i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, _ = s.SetDoor(intPtr(i % 2))
			_, _ = s.SetGarage(intPtr(1))
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var prev models.FullState
			for i := 0; i < 1000; i++ {
				full := s.FullState()
				if full.Revision < prev.Revision || full.Distance < prev.Distance ||
					full.LedIntensities[0] < prev.LedIntensities[0] || full.GarageOpen < prev.GarageOpen {
					t.Errorf("state went backwards: %+v after %+v", full, prev)
					return
				}
				prev = full
			}
		}()
	}
	wg.Wait()

	full := s.FullState()
	assert.Equal(t, rounds, full.Distance)
	assert.Equal(t, models.LedMaxIntensity, full.LedIntensities[0])
	assert.Equal(t, 1, full.GarageOpen)
	assert.Equal(t, uint64(models.LedMaxIntensity+1+2*rounds), full.Revision)
}

func TestParseFlag(t *testing.T) {
	v, err := ParseFlag("1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = ParseFlag("open")
	assert.True(t, errors.IsInvalidValue(err))

	_, err = ParseFlag("")
	assert.True(t, errors.IsInvalidValue(err))
}

func TestDecodeSensorUpdate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    models.SensorUpdate
		wantErr bool
	}{
		{name: "all fields", body: `{"temp":25.5,"humedad":60.0,"distancia":100}`,
			want: models.SensorUpdate{Temperature: floatPtr(25.5), Humidity: floatPtr(60), Distance: intPtr(100)}},
		{name: "distance only", body: `{"distancia":42}`, want: models.SensorUpdate{Distance: intPtr(42)}},
		{name: "unknown key ignored", body: `{"temp":20,"rssi":-70}`, want: models.SensorUpdate{Temperature: floatPtr(20)}},
		{name: "null keeps value", body: `{"temp":null,"distancia":3}`, want: models.SensorUpdate{Distance: intPtr(3)}},
		{name: "empty body", body: "", wantErr: true},
		{name: "empty object", body: "{}", wantErr: true},
		{name: "array", body: `[1,2]`, wantErr: true},
		{name: "not json", body: `temp=20`, wantErr: true},
		{name: "wrong type", body: `{"temp":"hot"}`, wantErr: true},
		{name: "fractional distance", body: `{"distancia":4.5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSensorUpdate(strings.NewReader(tt.body))
			if tt.wantErr {
				assert.True(t, errors.IsInvalidPayload(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrameBufferNotFoundThenExactBytes(t *testing.T) {
	b := NewFrameBuffer()

	_, err := b.Frame()
	assert.True(t, errors.IsNotFound(err))

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
	stored, err := b.SetFrame(data, "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultFrameContentType, stored.ContentType)
	assert.Equal(t, len(data), stored.Size)

	data[0] = 0x00 // caller reusing its buffer must not corrupt the stored frame

	got, err := b.Frame()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}, got.Data)
}

func TestFrameBufferRejectsEmpty(t *testing.T) {
	b := NewFrameBuffer()
	_, err := b.SetFrame(nil, "image/jpeg")
	assert.True(t, errors.IsEmptyPayload(err))

	_, err = b.Frame()
	assert.True(t, errors.IsNotFound(err))
}

func TestFrameBufferConcurrentReplace(t *testing.T) {
	b := NewFrameBuffer()
	var wg sync.WaitGroup

	for w := 1; w <= 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			payload := []byte(strings.Repeat(string(rune('a'+w)), 64*w))
			for i := 0; i < 200; i++ {
				if _, err := b.SetFrame(payload, "image/jpeg"); err != nil {
					t.Errorf("SetFrame: %v", err)
					return
				}
			}
		}(w)
	}
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				f, err := b.Frame()
				if err != nil {
					continue
				}
				// Every stored frame is a uniform run of one letter.
				if strings.Count(string(f.Data), string(f.Data[0])) != len(f.Data) || f.Size != len(f.Data) {
					t.Errorf("torn frame of size %d", len(f.Data))
					return
				}
			}
		}()
	}
	wg.Wait()

	last, err := b.Frame()
	require.NoError(t, err)
	assert.Equal(t, uint64(8*200), last.Sequence)
}
