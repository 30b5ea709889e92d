package charts

import (
	"strings"

	"gdxtoolbox/pkg/contracts/domain"
)

// transport process names carry a ten character sector prefix
const (
	passengerPrefix = "TRAN_PASS_"
	freightPrefix   = "TRAN_FRGT_"
)

// PassengerModes is the stacking order of passenger transport modes
var PassengerModes = []string{
	"BusDiesel", "BusBEV", "CarGasoline", "CarDiesel", "CarHEV", "CarPHEV", "CarBEV",
	"RailDiesel", "RailElectric", "AviationJetfuel_Int", "AviationJetfuel_Dom",
	"AviationBiofuel_Int", "AviationBiofuel_Dom",
}

// FreightModes is the stacking order of freight transport modes
var FreightModes = []string{
	"ShipsHFO", "ShipsMDO", "ShipsLNG", "ShipsBio", "RailDiesel", "RailElectric",
	"TruckDiesel", "TruckBEV", "VanDiesel", "VanBEV",
}

// PassengerTransport returns passenger transport by mode in 10^12 passenger-km
func PassengerTransport(tables domain.Collection) (*domain.Frame, error) {
	return transport(tables, passengerPrefix, PassengerModes, &domain.Frame{
		Name:  "passenger_transport",
		Title: "Annual Passenger Transportation",
		Unit:  "10^12 passenger-km",
		Kind:  domain.ChartStackedArea,
	})
}

// FreightTransport returns freight transport by mode in 10^12 tonne-km
func FreightTransport(tables domain.Collection) (*domain.Frame, error) {
	return transport(tables, freightPrefix, FreightModes, &domain.Frame{
		Name:  "freight_transport",
		Title: "Annual Freight Transportation",
		Unit:  "10^12 tonne-km",
		Kind:  domain.ChartStackedArea,
	})
}

func transport(tables domain.Collection, prefix string, modes []string, frame *domain.Frame) (*domain.Frame, error) {
	table, err := lookup(tables, "OutputAnnualByProcess")
	if err != nil {
		return nil, err
	}
	cols, err := columns(table, "process")
	if err != nil {
		return nil, err
	}
	process := cols[0]

	g, err := pivot(table, "year", "process", "level", func(i int) bool {
		return strings.Contains(process.Text(i), prefix)
	})
	if err != nil {
		return nil, err
	}

	order := make([]string, len(modes))
	for i, m := range modes {
		order[i] = prefix + m
	}
	return g.frameAs(frame, g.sortedIndex(), ordered(g.series, order), 1e6, modeLabel), nil
}

// modeLabel drops the sector prefix from a transport process name
func modeLabel(process string) string {
	if len(process) <= len(passengerPrefix) {
		return process
	}
	return process[len(passengerPrefix):]
}
