package testutil

import (
	"strconv"
	"strings"

	gtypes "github.com/turtacn/EpiAnnotator/pkg/types/geoname"
)

// Fixture is a gazetteer record with the alternate names it is stored under.
type Fixture struct {
	Record *gtypes.Record
	Names  []string
}

// Fixture geonameids.
const (
	SeattleID    = "5809844"
	WashingtonID = "5815135"
	KenyaID      = "192950"
	NairobiID    = "184745"
	CairoEGID    = "360630"
	CairoILID    = "4235193"
)

// GazetteerFixtures returns fresh copies of a small gazetteer with two
// homonyms (Cairo) and a city inside an admin1 region (Seattle, Washington).
func GazetteerFixtures() []Fixture {
	return []Fixture{
		{
			Record: &gtypes.Record{GeonameID: SeattleID, Name: "Seattle", ASCIIName: "Seattle",
				Latitude: 47.60621, Longitude: -122.33207, FeatureClass: "P", FeatureCode: "PPLA2",
				CountryCode: "US", Admin1Code: "WA", Admin2Code: "033", Population: 737015,
				Timezone: "America/Los_Angeles"},
			Names: []string{"Seattle", "Sijatl"},
		},
		{
			Record: &gtypes.Record{GeonameID: WashingtonID, Name: "Washington", ASCIIName: "Washington",
				Latitude: 47.50012, Longitude: -120.50147, FeatureClass: "A", FeatureCode: "ADM1",
				CountryCode: "US", Admin1Code: "WA", Population: 7705281,
				Timezone: "America/Los_Angeles"},
			Names: []string{"Washington", "WA", "State of Washington"},
		},
		{
			Record: &gtypes.Record{GeonameID: KenyaID, Name: "Kenya", ASCIIName: "Kenya",
				Latitude: 1, Longitude: 38, FeatureClass: "A", FeatureCode: "PCLI",
				CountryCode: "KE", Admin1Code: "00", Population: 53771300, Timezone: "Africa/Nairobi"},
			Names: []string{"Kenya", "Republic of Kenya"},
		},
		{
			Record: &gtypes.Record{GeonameID: NairobiID, Name: "Nairobi", ASCIIName: "Nairobi",
				Latitude: -1.28333, Longitude: 36.81667, FeatureClass: "P", FeatureCode: "PPLC",
				CountryCode: "KE", Admin1Code: "05", Population: 2750547, Timezone: "Africa/Nairobi"},
			Names: []string{"Nairobi"},
		},
		{
			Record: &gtypes.Record{GeonameID: CairoEGID, Name: "Cairo", ASCIIName: "Cairo",
				Latitude: 30.06263, Longitude: 31.24967, FeatureClass: "P", FeatureCode: "PPLC",
				CountryCode: "EG", Admin1Code: "11", Population: 9606916, Timezone: "Africa/Cairo"},
			Names: []string{"Cairo", "Al Qahirah"},
		},
		{
			Record: &gtypes.Record{GeonameID: CairoILID, Name: "Cairo", ASCIIName: "Cairo",
				Latitude: 37.00533, Longitude: -89.17646, FeatureClass: "P", FeatureCode: "PPLA2",
				CountryCode: "US", Admin1Code: "IL", Admin2Code: "003", Population: 2831,
				Timezone: "America/Chicago"},
			Names: []string{"Cairo"},
		},
	}
}

// GeonamesDump renders the fixtures as a GeoNames main-table dump followed by
// one malformed line.
func GeonamesDump() string {
	var b strings.Builder
	for _, f := range GazetteerFixtures() {
		r := f.Record
		var alt []string
		for _, n := range f.Names {
			if n != r.Name && n != r.ASCIIName {
				alt = append(alt, n)
			}
		}
		fields := []string{
			r.GeonameID, r.Name, r.ASCIIName, strings.Join(alt, ","),
			formatFloat(r.Latitude), formatFloat(r.Longitude),
			r.FeatureClass, r.FeatureCode, r.CountryCode, "",
			r.Admin1Code, r.Admin2Code, r.Admin3Code, r.Admin4Code,
			formatInt(r.Population), "", "0", r.Timezone, "2024-01-01",
		}
		b.WriteString(strings.Join(fields, "\t"))
		b.WriteByte('\n')
	}
	b.WriteString("not\ta\tgeonames\tline\n")
	return b.String()
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func formatInt(i int64) string { return strconv.FormatInt(i, 10) }

// AlternateNamesDump is an alternate names dump for the fixtures: two new
// names, one name already known, two code entries and one malformed line.
const AlternateNamesDump = "1\t" + SeattleID + "\tru\tСиэтл\t\t\t\t\t\t\n" +
	"2\t" + SeattleID + "\tlink\thttps://en.wikipedia.org/wiki/Seattle\t\t\t\t\t\t\n" +
	"3\t" + CairoEGID + "\tar\tالقاهرة\t1\t\t\t\t\t\n" +
	"4\t" + CairoEGID + "\ten\tCairo\t\t\t\t\t\t\n" +
	"5\t" + NairobiID + "\tiata\tNBO\t\t\t\t\t\t\n" +
	"short line\n"

//Personal.AI order the ending
