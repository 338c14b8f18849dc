// Package parser turns upstream HTML pages into validated Scraped* records.
//
// Parsing is heuristic: tables are located by header keywords, columns are mapped through
// synonym tables, and ids come from anchor query parameters. A row that cannot be read is
// dropped with a warning and parsing carries on; a page whose layout is not recognized
// yields no records.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"LeagueSync/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// DefaultRegionKeywords is used when no region keywords are configured.
var DefaultRegionKeywords = []config.RegionKeyword{
	{Keyword: "london", Region: "London"},
	{Keyword: "north", Region: "North"},
	{Keyword: "south", Region: "South"},
	{Keyword: "east", Region: "East"},
	{Keyword: "west", Region: "West"},
	{Keyword: "midlands", Region: "Midlands"},
	{Keyword: "scotland", Region: "Scotland"},
	{Keyword: "wales", Region: "Wales"},
}

// ErrUnrecognizedPage is returned when a page yields none of the records its parser needs.
var ErrUnrecognizedPage = errors.New("unrecognized page layout")

// OtherRegion labels leagues no region keyword matches.
const OtherRegion = "Other"

// Parser holds what every page parser shares.
type Parser struct {
	validate *validator.Validate
	logger   *logrus.Logger
	regions  []config.RegionKeyword
}

// New returns a Parser. Region keywords are matched in order against league names.
func New(logger *logrus.Logger, regions []config.RegionKeyword) *Parser {
	if len(regions) == 0 {
		regions = DefaultRegionKeywords
	}
	return &Parser{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		regions:  regions,
	}
}

func newDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// valid validates rec and logs the field violations when it fails.
func (p *Parser) valid(kind string, rec interface{}, fields logrus.Fields) bool {
	err := p.validate.Struct(rec)
	if err == nil {
		return true
	}

	var violations []string
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			violations = append(violations, fmt.Sprintf("%s(%s=%v)", fe.Field(), fe.Tag(), fe.Value()))
		}
	} else {
		violations = append(violations, err.Error())
	}
	p.logger.WithFields(fields).WithFields(logrus.Fields{
		"record":     kind,
		"violations": strings.Join(violations, ", "),
	}).Warn("dropping invalid scraped record")
	return false
}

// regionFor maps a league name to a region label.
func (p *Parser) regionFor(leagueName string) string {
	lower := strings.ToLower(leagueName)
	for _, rk := range p.regions {
		if rk.Keyword != "" && strings.Contains(lower, strings.ToLower(rk.Keyword)) {
			return rk.Region
		}
	}
	return OtherRegion
}
