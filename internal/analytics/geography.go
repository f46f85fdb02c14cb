package analytics

import (
	"sort"
	"strings"

	"ecomdash/internal/core"
)

// DefaultTopCities is how many cities the city chart shows.
const DefaultTopCities = 10

// CustomersByState counts distinct customers per state, largest first.
// Records without a state or a customer id are skipped.
func CustomersByState(records []core.OrderRecord) []core.StateCustomers {
	customers := make(map[string]map[string]struct{})
	for _, r := range records {
		state := strings.TrimSpace(r.CustomerState)
		if state == "" || r.CustomerID == "" {
			continue
		}
		if customers[state] == nil {
			customers[state] = make(map[string]struct{})
		}
		customers[state][r.CustomerID] = struct{}{}
	}

	out := make([]core.StateCustomers, 0, len(customers))
	for state, ids := range customers {
		out = append(out, core.StateCustomers{State: state, CustomerCount: len(ids)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CustomerCount != out[j].CustomerCount {
			return out[i].CustomerCount > out[j].CustomerCount
		}
		return out[i].State < out[j].State
	})
	return out
}

// TopCities returns the n cities with the most records. Unlike
// CustomersByState this counts rows, not distinct customers, so a customer
// buying several items counts several times.
func TopCities(records []core.OrderRecord, n int) []core.CityCount {
	counts := make(map[string]int)
	for _, r := range records {
		city := strings.TrimSpace(r.CustomerCity)
		if city == "" {
			continue
		}
		counts[city]++
	}

	out := make([]core.CityCount, 0, len(counts))
	for city, c := range counts {
		out = append(out, core.CityCount{City: city, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].City < out[j].City
	})
	if n < 0 {
		n = 0
	}
	if n < len(out) {
		out = out[:n]
	}
	return out
}

// UniqueCustomerLocations keeps the first geolocation row of every unique
// customer, in input order.
func UniqueCustomerLocations(points []core.GeoPoint) []core.GeoPoint {
	seen := make(map[string]struct{}, len(points))
	out := make([]core.GeoPoint, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p.CustomerUniqueID]; ok {
			continue
		}
		seen[p.CustomerUniqueID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// CustomerLocations returns the deduplicated points of the customers that
// appear in records, so the map follows the same filter as the charts.
func CustomerLocations(records []core.OrderRecord, points []core.GeoPoint) []core.GeoPoint {
	customers := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.CustomerUniqueID != "" {
			customers[r.CustomerUniqueID] = struct{}{}
		}
	}
	out := make([]core.GeoPoint, 0)
	for _, p := range UniqueCustomerLocations(points) {
		if _, ok := customers[p.CustomerUniqueID]; ok {
			out = append(out, p)
		}
	}
	return out
}
