package testrun

// SetNotes returns an UpdateSetter that sets the test run's notes.
func SetNotes(notes string) UpdateSetter {
	return func(tr *TestRun) error {
		tr.Notes = notes
		return nil
	}
}

// AppendNotes returns an UpdateSetter that adds a line to the notes.
func AppendNotes(line string) UpdateSetter {
	return func(tr *TestRun) error {
		if tr.Notes == "" {
			tr.Notes = line
			return nil
		}
		tr.Notes += "\n" + line
		return nil
	}
}
