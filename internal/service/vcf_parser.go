// Package service implements the pharmacogenomic analysis pipeline: VCF
// parsing, genotype classification, risk resolution against the knowledge
// base, and rendering into the external result schema.
package service

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
)

// metaLinePattern matches ##key=value meta-information lines.
var metaLinePattern = regexp.MustCompile(`^##(\w+)=(.+)$`)

// VCFParserService parses VCF v4.2 content into typed variant records.
// Malformed data lines are dropped silently; parsing never fails on
// per-line problems.
type VCFParserService struct {
	logger *logrus.Logger
}

// NewVCFParserService creates a new VCF parser service
func NewVCFParserService(logger *logrus.Logger) *VCFParserService {
	return &VCFParserService{logger: logger}
}

// Parse parses VCF file content and returns structured variant data.
// Undecodable bytes are replaced rather than rejected, so the only error
// surface is reserved for callers handing in nothing at all.
func (p *VCFParserService) Parse(content []byte) (*domain.VCFParseResult, error) {
	text := strings.ToValidUTF8(string(content), "�")

	result := &domain.VCFParseResult{
		Variants:  make([]domain.Variant, 0),
		SampleIDs: make([]string, 0),
		MetaInfo:  make(map[string]any),
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Meta-information lines (##)
		if strings.HasPrefix(line, "##") {
			parseMetaLine(line, result.MetaInfo)
			continue
		}

		// Header line (#CHROM ...)
		if strings.HasPrefix(line, "#CHROM") || strings.HasPrefix(line, "#chrom") {
			headerCols := strings.Split(strings.TrimLeft(line, "#"), "\t")
			// Sample IDs are the columns after FORMAT (index 8)
			if len(headerCols) > 9 {
				result.SampleIDs = headerCols[9:]
			}
			continue
		}

		// Data lines
		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			p.logger.WithField("columns", len(fields)).Debug("Skipping malformed VCF line")
			continue
		}

		variant, ok := parseVariantLine(fields)
		if !ok {
			p.logger.WithField("chrom", fields[0]).Debug("Skipping unparseable VCF line")
			continue
		}

		// Multi-allelic sites explode into one record per alternate allele,
		// identical in every other field.
		alts := strings.Split(variant.Alt, ",")
		if len(alts) > 1 {
			for _, alt := range alts {
				v := variant
				v.Alt = strings.TrimSpace(alt)
				result.Variants = append(result.Variants, v)
			}
		} else {
			result.Variants = append(result.Variants, variant)
		}
	}

	result.TotalVariants = len(result.Variants)

	p.logger.WithFields(logrus.Fields{
		"total_variants": result.TotalVariants,
		"sample_count":   len(result.SampleIDs),
	}).Info("VCF parsing completed")

	return result, nil
}

// parseMetaLine records a ##key=value line; repeated keys accumulate into
// an ordered slice instead of overwriting.
func parseMetaLine(line string, metaInfo map[string]any) {
	match := metaLinePattern.FindStringSubmatch(line)
	if match == nil {
		return
	}
	key, value := match[1], match[2]

	existing, ok := metaInfo[key]
	if !ok {
		metaInfo[key] = value
		return
	}
	if list, isList := existing.([]string); isList {
		metaInfo[key] = append(list, value)
		return
	}
	metaInfo[key] = []string{existing.(string), value}
}

// parseVariantLine parses a single tab-separated data line. A false return
// means the line is malformed and must be skipped.
func parseVariantLine(fields []string) (domain.Variant, bool) {
	pos, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return domain.Variant{}, false
	}

	rsid := fields[2]
	if rsid == "." {
		rsid = ""
	}

	var quality *float64
	if fields[5] != "." {
		q, err := strconv.ParseFloat(fields[5], 64)
		if err != nil {
			return domain.Variant{}, false
		}
		quality = &q
	}

	variant := domain.Variant{
		Chrom:        fields[0],
		Pos:          pos,
		RSID:         rsid,
		Ref:          fields[3],
		Alt:          fields[4],
		Quality:      quality,
		FilterStatus: fields[6],
		Info:         parseInfoField(fields[7]),
	}

	// Genotype comes from the first sample column, located via the GT key
	// in the FORMAT column.
	if len(fields) > 9 {
		variant.Genotype = extractGenotype(fields[8], fields[9])
	}

	return variant, true
}

// parseInfoField parses the INFO column (key=value;key=value). Bare flag
// tokens map to boolean true; a literal "." yields an empty map.
func parseInfoField(infoStr string) map[string]any {
	info := make(map[string]any)
	if infoStr == "." {
		return info
	}
	for _, item := range strings.Split(infoStr, ";") {
		if k, v, found := strings.Cut(item, "="); found {
			info[k] = v
		} else {
			info[item] = true
		}
	}
	return info
}

// extractGenotype reads the GT value from the FORMAT and sample columns.
// Returns empty when no GT key is declared.
func extractGenotype(formatField, sampleField string) string {
	fmtKeys := strings.Split(formatField, ":")
	sampleVals := strings.Split(sampleField, ":")
	for i, key := range fmtKeys {
		if key == "GT" {
			if i < len(sampleVals) {
				return sampleVals[i]
			}
			return ""
		}
	}
	return ""
}
