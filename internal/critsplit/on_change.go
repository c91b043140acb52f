package ic

import "sync"

const (
	OnChangeStrategyPre        = "pre"
	OnChangeStrategyPost       = "post"
	OnChangeStrategyConcurrent = "concurrent"
)

type sortedOnChangeCallbacks struct {
	stratPre        []OnChange
	stratConcurrent []OnChange
	stratPost       []OnChange
}

func sortOnChangeCallbacks(onChanges []OnChange) sortedOnChangeCallbacks {
	var sorted sortedOnChangeCallbacks
	for _, o := range onChanges {
		switch o.Strategy {
		case OnChangeStrategyPre, "":
			sorted.stratPre = append(sorted.stratPre, o)
		case OnChangeStrategyConcurrent:
			sorted.stratConcurrent = append(sorted.stratConcurrent, o)
		case OnChangeStrategyPost:
			sorted.stratPost = append(sorted.stratPost, o)
		}
	}
	return sorted
}

// runConcurrentOnChangeCallbacks starts every callback and returns a wait
// func that blocks until all of them are done.
func (c *Config) runConcurrentOnChangeCallbacks(onChanges []OnChange, evtName string) (wait func()) {
	var wg sync.WaitGroup
	for _, o := range onChanges {
		if c.getIsIgnored(evtName, o.ExcludedPatterns) {
			continue
		}
		wg.Add(1)
		go func(o OnChange) {
			defer wg.Done()
			if err := o.Func(evtName); err != nil {
				c.log().Errorf("error running onChange callback: %v", err)
			}
		}(o)
	}
	return wg.Wait
}

func (c *Config) simpleRunOnChangeCallbacks(onChanges []OnChange, evtName string) {
	for _, o := range onChanges {
		if c.getIsIgnored(evtName, o.ExcludedPatterns) {
			continue
		}
		if err := o.Func(evtName); err != nil {
			c.log().Errorf("error running onChange callback: %v", err)
		}
	}
}
