package rhythm

import "time"

// Snapshot is a consistent view of the metronome at one moment.
type Snapshot struct {
	Playing     bool    `json:"playing"`
	Tempo       float64 `json:"tempo"`
	BeatsPerBar int     `json:"beats_per_bar"`
	// NextBeat is the bar index the next unscheduled beat will carry.
	NextBeat int `json:"next_beat"`
	// NextBeatTime is the transport time of the next unscheduled beat.
	NextBeatTime float64 `json:"next_beat_time"`
	// Time is the transport time when the snapshot was taken.
	Time float64 `json:"time"`
	// Ticks counts scheduling ticks since the metronome was created.
	Ticks int64 `json:"ticks"`
}

// BeatInterval gets the snapshot's beat length in time.
func (s Snapshot) BeatInterval() time.Duration {
	return beatsToDuration(1, s.Tempo)
}

// BarInterval gets the snapshot's bar length in time.
func (s Snapshot) BarInterval() time.Duration {
	return beatsToDuration(s.BeatsPerBar, s.Tempo)
}

// TimeOfBeat is the transport time of the n-th beat after the next
// unscheduled one, assuming the tempo holds.
func (s Snapshot) TimeOfBeat(n int) float64 {
	return s.NextBeatTime + float64(n)*beatsToSeconds(1, s.Tempo)
}

func beatsToSeconds(beats int, tempo float64) float64 {
	return (60.0 / tempo) * float64(beats)
}

func beatsToDuration(beats int, tempo float64) time.Duration {
	return time.Duration(beatsToSeconds(beats, tempo) * float64(time.Second))
}
