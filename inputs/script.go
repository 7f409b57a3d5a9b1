package inputs

// Script is a test double that returns scripted snapshots. When the script
// runs out it keeps returning the last snapshot, so a settled line stays
// settled.
type Script struct {
	Samples []uint16
	index   int

	// ReadErr, if set, is returned by ReadSnapshot.
	ReadErr error
}

// NewScript creates a Script starting with the given samples.
func NewScript(samples ...uint16) *Script {
	return &Script{Samples: samples}
}

func (s *Script) ReadSnapshot() (uint16, error) {
	if s.ReadErr != nil {
		return 0, s.ReadErr
	}
	if len(s.Samples) == 0 {
		return 0xFFFF, nil
	}
	snap := s.Samples[s.index]
	if s.index < len(s.Samples)-1 {
		s.index++
	}
	return snap, nil
}

// Feed appends further samples to the script.
func (s *Script) Feed(samples ...uint16) {
	s.Samples = append(s.Samples, samples...)
}
