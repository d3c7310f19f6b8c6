package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleVCF = `##fileformat=VCFv4.2
##source=PharmaGuardTest
##contig=<ID=chr10>
##contig=<ID=chr22>
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	PATIENT_001
chr10	96702047	rs1799853	C	T	99	PASS	DP=120;GENE=CYP2C9	GT:DP	0/1:120
chr10	96541616	rs4244285	G	A	88	PASS	DP=95;GENE=CYP2C19	GT:DP	1/1:95
chr22	42526694	rs3892097	G	A	92	PASS	DP=110;GENE=CYP2D6	GT:DP	0/1:110
`

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return logger
}

func TestParseWellFormedVCF(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	result, err := parser.Parse([]byte(sampleVCF))
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalVariants)
	assert.Len(t, result.Variants, 3)
	assert.Equal(t, []string{"PATIENT_001"}, result.SampleIDs)

	v := result.Variants[0]
	assert.Equal(t, "chr10", v.Chrom)
	assert.Equal(t, int64(96702047), v.Pos)
	assert.Equal(t, "rs1799853", v.RSID)
	assert.Equal(t, "C", v.Ref)
	assert.Equal(t, "T", v.Alt)
	require.NotNil(t, v.Quality)
	assert.Equal(t, 99.0, *v.Quality)
	assert.Equal(t, "PASS", v.FilterStatus)
	assert.Equal(t, "0/1", v.Genotype)
	assert.Equal(t, "120", v.Info["DP"])
	assert.Equal(t, "CYP2C9", v.Info["GENE"])
}

func TestParseMetaInfo(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	result, err := parser.Parse([]byte(sampleVCF))
	require.NoError(t, err)

	assert.Equal(t, "VCFv4.2", result.MetaInfo["fileformat"])
	assert.Equal(t, "PharmaGuardTest", result.MetaInfo["source"])

	// Repeated keys accumulate in order instead of overwriting.
	contigs, ok := result.MetaInfo["contig"].([]string)
	require.True(t, ok)
	assert.Equal(t, []string{"<ID=chr10>", "<ID=chr22>"}, contigs)
}

func TestParseIdempotent(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	first, err := parser.Parse([]byte(sampleVCF))
	require.NoError(t, err)
	second, err := parser.Parse([]byte(sampleVCF))
	require.NoError(t, err)

	assert.Equal(t, first.Variants, second.Variants)
}

func TestParseMultiAllelic(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	content := "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\tS1\n" +
		"chr1\t1000\trs111\tA\tG,T\t50\tPASS\tDP=30\tGT:DP\t1/2:30\n"

	result, err := parser.Parse([]byte(content))
	require.NoError(t, err)

	require.Len(t, result.Variants, 2)
	assert.Equal(t, "G", result.Variants[0].Alt)
	assert.Equal(t, "T", result.Variants[1].Alt)

	// Every other field is a full copy of the original line.
	for _, v := range result.Variants {
		assert.Equal(t, "chr1", v.Chrom)
		assert.Equal(t, int64(1000), v.Pos)
		assert.Equal(t, "rs111", v.RSID)
		assert.Equal(t, "A", v.Ref)
		assert.Equal(t, "1/2", v.Genotype)
	}
}

func TestParseMalformedLinesTolerance(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	tests := []struct {
		name    string
		line    string
		wantLen int
	}{
		{"too few columns", "chr1\t1000\trs1\tA\tG", 0},
		{"bad position", "chr1\tnotanumber\trs1\tA\tG\t50\tPASS\tDP=1", 0},
		{"bad quality", "chr1\t1000\trs1\tA\tG\tbadqual\tPASS\tDP=1", 0},
		{"minimal valid 8 columns", "chr1\t1000\trs1\tA\tG\t50\tPASS\tDP=1", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parser.Parse([]byte(tt.line + "\n"))
			require.NoError(t, err)
			assert.Len(t, result.Variants, tt.wantLen)
		})
	}
}

func TestParseMixedGoodAndBadLines(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	content := "chr1\t1000\trs1\tA\tG\t50\tPASS\tDP=1\n" +
		"chr1\t2000\trs2\tC\tT\n"

	result, err := parser.Parse([]byte(content))
	require.NoError(t, err)
	require.Len(t, result.Variants, 1)
	assert.Equal(t, "rs1", result.Variants[0].RSID)
}

func TestParseDotValues(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	content := "chr1\t1000\t.\tA\tG\t.\t.\t.\n"

	result, err := parser.Parse([]byte(content))
	require.NoError(t, err)
	require.Len(t, result.Variants, 1)

	v := result.Variants[0]
	assert.Empty(t, v.RSID)
	assert.Nil(t, v.Quality)
	assert.Equal(t, ".", v.FilterStatus)
	assert.Empty(t, v.Info)
	assert.Empty(t, v.Genotype)
}

func TestParseInfoFlags(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	content := "chr1\t1000\trs1\tA\tG\t50\tPASS\tDB;DP=42;H2\n"

	result, err := parser.Parse([]byte(content))
	require.NoError(t, err)
	require.Len(t, result.Variants, 1)

	info := result.Variants[0].Info
	assert.Equal(t, true, info["DB"])
	assert.Equal(t, true, info["H2"])
	assert.Equal(t, "42", info["DP"])
}

func TestParseMissingGTKey(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	content := "chr1\t1000\trs1\tA\tG\t50\tPASS\tDP=1\tDP:AD\t30:15,15\n"

	result, err := parser.Parse([]byte(content))
	require.NoError(t, err)
	require.Len(t, result.Variants, 1)
	assert.Empty(t, result.Variants[0].Genotype)
}

func TestParseInvalidUTF8(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	content := append([]byte("chr1\t1000\trs1\tA\tG\t50\tPASS\tDP=1"), 0xff, 0xfe, '\n')

	result, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Len(t, result.Variants, 1)
}

func TestParseBlankLinesSkipped(t *testing.T) {
	parser := NewVCFParserService(testLogger())

	content := "\n\nchr1\t1000\trs1\tA\tG\t50\tPASS\tDP=1\n\n"

	result, err := parser.Parse([]byte(content))
	require.NoError(t, err)
	assert.Len(t, result.Variants, 1)
}
