//go:build analysis

// Command analysis benchmarks signing and verification across parameter
// sets and renders an HTML report with timing and size charts, plus a
// JSON dump of the raw numbers.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"picnic3-signature/measure"
	"picnic3-signature/picnic"
	"picnic3-signature/prof"
)

type summaryStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

func computeStats(x []float64) summaryStats {
	n := len(x)
	if n == 0 {
		return summaryStats{}
	}
	cp := append([]float64(nil), x...)
	sort.Float64s(cp)
	var mean float64
	for _, v := range cp {
		mean += v
	}
	mean /= float64(n)
	var varAcc float64
	for _, v := range cp {
		varAcc += (v - mean) * (v - mean)
	}
	return summaryStats{
		Count:  n,
		Mean:   mean,
		Std:    math.Sqrt(varAcc / float64(n)),
		Min:    cp[0],
		Median: cp[n/2],
		Max:    cp[n-1],
	}
}

type setReport struct {
	Params   string       `json:"params"`
	SigBytes int          `json:"signature_bytes"`
	SignMS   summaryStats `json:"sign_ms"`
	VerifyMS summaryStats `json:"verify_ms"`
}

func benchSet(p picnic.Params, iters int) setReport {
	priv, err := picnic.GenerateKey(p)
	if err != nil {
		log.Fatal(err)
	}
	msg := []byte("analysis benchmark message")

	var signMS, verifyMS []float64
	var sigLen int
	for i := 0; i < iters; i++ {
		start := time.Now()
		sig, err := picnic.Sign(priv, msg)
		if err != nil {
			log.Fatal(err)
		}
		signMS = append(signMS, float64(time.Since(start).Microseconds())/1000)
		sigLen = len(sig)

		start = time.Now()
		if err := picnic.Verify(&priv.PublicKey, msg, sig); err != nil {
			log.Fatal(err)
		}
		verifyMS = append(verifyMS, float64(time.Since(start).Microseconds())/1000)
	}
	return setReport{
		Params:   p.Name,
		SigBytes: sigLen,
		SignMS:   computeStats(signMS),
		VerifyMS: computeStats(verifyMS),
	}
}

func timingChart(reports []setReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "sign/verify latency", Subtitle: "mean, milliseconds"}),
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "picnic3 analysis", Width: "1200px", Height: "600px"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	var names []string
	var signItems, verifyItems []opts.BarData
	for _, r := range reports {
		names = append(names, r.Params)
		signItems = append(signItems, opts.BarData{Value: r.SignMS.Mean})
		verifyItems = append(verifyItems, opts.BarData{Value: r.VerifyMS.Mean})
	}
	bar.SetXAxis(names).
		AddSeries("sign", signItems).
		AddSeries("verify", verifyItems)
	return bar
}

func sizeChart(reports []setReport) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "signature size", Subtitle: "bytes"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	var names []string
	var items []opts.BarData
	for _, r := range reports {
		names = append(names, r.Params)
		items = append(items, opts.BarData{Value: r.SigBytes})
	}
	bar.SetXAxis(names).AddSeries("bytes", items)
	return bar
}

func main() {
	iters := flag.Int("iters", 10, "iterations per parameter set")
	full := flag.Bool("full", false, "include the L3/L5 parameter sets")
	htmlOut := flag.String("html", "picnic3_analysis.html", "HTML report path")
	jsonOut := flag.String("json", "picnic3_analysis.json", "JSON report path")
	flag.Parse()

	measure.Enabled = true
	sets := []picnic.Params{picnic.Picnic3Test, picnic.Picnic3L1}
	if *full {
		sets = append(sets, picnic.Picnic3L3, picnic.Picnic3L5)
	}

	var reports []setReport
	for _, p := range sets {
		fmt.Printf("benchmarking %s (%d iterations)...\n", p.Name, *iters)
		reports = append(reports, benchSet(p, *iters))
	}

	raw, err := json.MarshalIndent(struct {
		Reports  []setReport       `json:"reports"`
		Counters map[string]uint64 `json:"counters"`
		Timings  []prof.Stat       `json:"timings"`
	}{reports, measure.Global.SnapshotAndReset(), prof.SnapshotAndReset()}, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile(*jsonOut, raw, 0o644); err != nil {
		log.Fatal(err)
	}

	page := components.NewPage()
	page.AddCharts(timingChart(reports), sizeChart(reports))
	f, err := os.Create(*htmlOut)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("wrote %s and %s\n", *htmlOut, *jsonOut)
}
