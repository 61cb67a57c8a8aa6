package store

// FindEvent returns a pointer into the document's event slice, or nil.
func (d *Document) FindEvent(id string) *ReleaseEvent {
	for i := range d.ReleaseEvents {
		if d.ReleaseEvents[i].ID == id {
			return &d.ReleaseEvents[i]
		}
	}
	return nil
}

// FindStatus returns a pointer into the document's status slice, or nil.
func (d *Document) FindStatus(eventID string) *ReleaseStatus {
	for i := range d.ReleaseStatus {
		if d.ReleaseStatus[i].EventID == eventID {
			return &d.ReleaseStatus[i]
		}
	}
	return nil
}

// FindRun returns a pointer into the document's run slice, or nil.
func (d *Document) FindRun(runID string) *AnalysisRun {
	for i := range d.AnalysisRuns {
		if d.AnalysisRuns[i].RunID == runID {
			return &d.AnalysisRuns[i]
		}
	}
	return nil
}

// RunsForEvent returns copies of all runs recorded for the event, in document order.
func (d *Document) RunsForEvent(eventID string) []AnalysisRun {
	var runs []AnalysisRun
	for _, run := range d.AnalysisRuns {
		if run.EventID == eventID {
			runs = append(runs, run)
		}
	}
	return runs
}

// PublishedEvents returns copies of all events whose status row is published,
// in document order. Used for historical context in analysis.
func (d *Document) PublishedEvents() []ReleaseEvent {
	var events []ReleaseEvent
	for _, status := range d.ReleaseStatus {
		if status.State != StatePublished {
			continue
		}
		if event := d.FindEvent(status.EventID); event != nil {
			events = append(events, *event)
		}
	}
	return events
}
