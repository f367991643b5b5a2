package brickfolio

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

func (s *Brickfolio) runJobs() {
	s.scheduler.Every(2).Minute().SingletonMode().Do(s.refreshCatalog)
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.updateMetrics)
	s.scheduler.Every(5).Minute().SingletonMode().Do(s.warmTallies)

	s.scheduler.StartAsync()
}

func (s *Brickfolio) refreshCatalog() {
	if !s.session.Connected() {
		return
	}
	if _, err := s.catalog.LoadAll(); err != nil {
		log.Warn("scheduled catalog refresh", "err", err)
	}
}

func (s *Brickfolio) updateMetrics() {
	catalogSize.Set(float64(s.catalog.Size()))

	orders, err := s.estate.AllSellOrders()
	if err != nil {
		return
	}
	active := 0
	for _, o := range orders {
		if o.IsActive {
			active++
		}
	}
	activeOrders.Set(float64(active))
}

// warmTallies prefetches candidate tallies for open applications so vote
// pages render from cache. Counts are informational; failures are skipped.
func (s *Brickfolio) warmTallies() {
	props, err := s.gov.Properties()
	if err != nil {
		return
	}

	type pair struct {
		appId     uint64
		candidate string
	}
	work := make([]pair, 0)
	for _, p := range props {
		apps, err := s.gov.PropertyApplications(p.PropertyId)
		if err != nil {
			continue
		}
		for _, a := range apps {
			if a.IsActive {
				work = append(work, pair{appId: a.ApplicationId, candidate: a.Applicant})
			}
		}
	}
	if len(work) == 0 {
		return
	}

	var wg sync.WaitGroup
	pool, _ := ants.NewPoolWithFunc(10, func(i interface{}) {
		defer wg.Done()
		w := i.(pair)
		votes, err := s.gov.CandidateVotes(w.appId, w.candidate)
		if err != nil {
			return
		}
		key := fmt.Sprintf("governance:tally:%d:%s", w.appId, w.candidate)
		if err := s.cache.SetJSON(key, votes); err != nil {
			log.Warn("cache tally", "err", err)
		}
	})
	defer pool.Release()

	for _, w := range work {
		wg.Add(1)
		_ = pool.Invoke(w)
	}
	wg.Wait()
}
