// surveyctl is the field tool: record surveys, describe outcrops, generate
// maps, and query the knowledge base without running the API server.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mjkeller/geosurvey/internal/adapters/classifier"
	"github.com/mjkeller/geosurvey/internal/adapters/fetch"
	"github.com/mjkeller/geosurvey/internal/adapters/jsonstore"
	"github.com/mjkeller/geosurvey/internal/adapters/render"
	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
	"github.com/mjkeller/geosurvey/internal/pkg/config"
	"github.com/mjkeller/geosurvey/internal/pkg/logging"
)

func main() {
	var (
		newSurvey   = flag.Bool("new-survey", false, "record a new survey (coordinates read from stdin)")
		formation   = flag.String("formation", "", "formation name for -new-survey")
		describe    = flag.String("add-description", "", "survey ID to describe")
		text        = flag.String("text", "", "description text for -add-description")
		locIndex    = flag.Int("location-index", 0, "coordinate index for -add-description")
		generateMap = flag.String("generate-map", "", "survey ID to render a map for")
		identify    = flag.String("identify", "", "path to a sample image to identify")
		details     = flag.String("details", "", "rock or mineral name to look up")
		searchProp  = flag.String("search", "", "property=value to search (e.g. hardness=7)")
		searchKind  = flag.String("kind", "mineral", "collection for -search: mineral or rock")
		list        = flag.Bool("list", false, "list all surveys")
		update      = flag.Bool("update", false, "refresh the knowledge base from online sources")
	)
	flag.Parse()

	cfg, err := config.Load("geosurvey-ctl")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("warn", "text")

	app, err := buildApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	ctx := context.Background()

	switch {
	case *newSurvey:
		app.newSurvey(ctx, *formation)
	case *describe != "":
		app.addDescription(ctx, *describe, *text, *locIndex)
	case *generateMap != "":
		app.generateMap(ctx, *generateMap)
	case *identify != "":
		app.identify(ctx, *identify)
	case *details != "":
		app.details(ctx, *details)
	case *searchProp != "":
		app.search(ctx, *searchProp, *searchKind)
	case *list:
		app.list(ctx)
	case *update:
		app.update(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

type cliApp struct {
	surveys   *usecases.SurveyService
	knowledge *usecases.KnowledgeService
	maps      *usecases.MapService
	identifer *usecases.IdentifyService
	updater   *usecases.UpdaterService
}

// buildApp wires the JSON file backend. The CLI is the single-user path; it
// never talks to postgres, NATS, or the cache.
func buildApp(cfg *config.Config) (*cliApp, error) {
	surveyRepo, err := jsonstore.NewSurveyRepo(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	knowledgeRepo, err := jsonstore.NewKnowledgeRepo(cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(cfg.Storage.OutputDir)
	if err != nil {
		return nil, err
	}

	knowledgeSvc := usecases.NewKnowledgeService(knowledgeRepo, nil)
	surveySvc := usecases.NewSurveyService(surveyRepo, knowledgeSvc, usecases.NewKeywordClassifier(), nil)
	processorSvc := usecases.NewProcessorService(knowledgeSvc)
	source := fetch.NewWikipediaSource(cfg.Updater.MineralSource, cfg.Updater.RockSource)

	return &cliApp{
		surveys:   surveySvc,
		knowledge: knowledgeSvc,
		maps:      usecases.NewMapService(surveySvc, processorSvc, renderer, nil),
		identifer: usecases.NewIdentifyService(classifier.New(), knowledgeSvc),
		updater:   usecases.NewUpdaterService(source, knowledgeSvc),
	}, nil
}

// newSurvey reads "lat lon elevation" lines from stdin until "done".
func (a *cliApp) newSurvey(ctx context.Context, formation string) {
	fmt.Println("Enter coordinates as: lat lon elevation (finish with 'done')")

	var coords []domain.Coordinate
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "done") {
			break
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			fmt.Println("expected three numbers: lat lon elevation")
			continue
		}
		lat, err1 := strconv.ParseFloat(fields[0], 64)
		lon, err2 := strconv.ParseFloat(fields[1], 64)
		elev, err3 := strconv.ParseFloat(fields[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			fmt.Println("could not parse coordinate, try again")
			continue
		}
		coords = append(coords, domain.Coordinate{Lat: lat, Lon: lon, Elevation: elev})
		fmt.Printf("point %d recorded\n", len(coords))
	}

	if len(coords) == 0 {
		log.Fatal("no coordinates entered")
	}

	survey, err := a.surveys.Create(ctx, coords, formation)
	if err != nil {
		log.Fatalf("create survey: %v", err)
	}
	fmt.Printf("Survey %s recorded with %d points\n", survey.ID, len(survey.Coordinates))
}

func (a *cliApp) addDescription(ctx context.Context, surveyID, text string, locIndex int) {
	if strings.TrimSpace(text) == "" {
		log.Fatal("-text is required with -add-description")
	}
	details, err := a.surveys.AddDescription(ctx, surveyID, text, locIndex)
	if err != nil {
		log.Fatalf("add description: %v", err)
	}
	if details == nil {
		fmt.Println("Description recorded (no type inferred)")
		return
	}
	fmt.Printf("Description recorded, inferred %s: %s\n", details.Kind, details.Data.Name())
	printJSON(details.Data)
}

func (a *cliApp) generateMap(ctx context.Context, surveyID string) {
	m, path, err := a.maps.Generate(ctx, surveyID)
	if err != nil {
		log.Fatalf("generate map: %v", err)
	}
	fmt.Printf("Map for %s: %d units, %d boundaries, %d structural features\n",
		surveyID, len(m.Units), len(m.Boundaries), len(m.StructuralFeatures))
	fmt.Printf("Saved to %s\n", path)
}

func (a *cliApp) identify(ctx context.Context, imagePath string) {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		log.Fatalf("read image: %v", err)
	}
	details, err := a.identifer.Identify(ctx, image)
	if err != nil {
		log.Fatalf("identify: %v", err)
	}
	fmt.Printf("Identified %s: %s\n", details.Kind, details.Data.Name())
	printJSON(details.Data)
}

func (a *cliApp) details(ctx context.Context, name string) {
	details := a.knowledge.Details(ctx, name)
	if details.Kind == domain.KindUnknown {
		fmt.Printf("%s is not in the knowledge base\n", name)
		return
	}
	fmt.Printf("%s (%s)\n", name, details.Kind)
	printJSON(details.Data)
}

func (a *cliApp) search(ctx context.Context, query, kind string) {
	property, value, ok := strings.Cut(query, "=")
	if !ok {
		log.Fatal("-search expects property=value")
	}
	results, err := a.knowledge.SearchByProperty(ctx, property, value, domain.RecordKind(kind))
	if err != nil {
		log.Fatalf("search: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("no matches")
		return
	}
	for _, rec := range results {
		fmt.Println("-", rec.Name())
	}
}

func (a *cliApp) list(ctx context.Context) {
	surveys, err := a.surveys.List(ctx)
	if err != nil {
		log.Fatalf("list surveys: %v", err)
	}
	if len(surveys) == 0 {
		fmt.Println("no surveys recorded")
		return
	}
	for _, s := range surveys {
		fmt.Printf("%s  %s  %d points, %d descriptions\n",
			s.ID, s.Date, len(s.Coordinates), len(s.Descriptions))
	}
}

func (a *cliApp) update(ctx context.Context) {
	result, err := a.updater.Update(ctx)
	if err != nil {
		log.Fatalf("update: %v", err)
	}
	fmt.Printf("Knowledge base updated: %d minerals added, %d rocks added, %d skipped\n",
		result.MineralsAdded, result.RocksAdded, result.Skipped)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(data))
}
