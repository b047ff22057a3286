package structure_test

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voiceki.app/catalog/internal/model"
	"voiceki.app/catalog/internal/structure"
)

var _ = Describe("Engine", func() {
	var (
		ctx    context.Context
		engine *structure.Engine
	)

	BeforeEach(func() {
		ctx = context.Background()
		engine = structure.NewEngine()
	})

	byID := func(questions []model.Question, id string) *model.Question {
		for i := range questions {
			if questions[i].ID == id {
				return &questions[i]
			}
		}
		return nil
	}

	Describe("qualification consolidation", func() {
		It("collapses must-have and alternatives into one choice question", func() {
			ex := &model.ExtractResult{
				MustHave:     []string{"Studium Elektrotechnik"},
				Alternatives: []string{"Ausbildung Elektriker", "Ausbildung Elektrofachkraft"},
			}

			questions := engine.Build(ctx, ex)

			consolidated := byID(questions, "abschluss_qualifikation")
			Expect(consolidated).NotTo(BeNil())
			Expect(consolidated.Type).To(Equal(model.TypeChoice))
			Expect(consolidated.Options).To(Equal([]string{
				"Ausbildung Elektriker",
				"Ausbildung Elektrofachkraft",
				"Anderer Abschluss",
			}))
			Expect(consolidated.GateConfig).NotTo(BeNil())
			Expect(consolidated.GateConfig.IsGate).To(BeTrue())
			Expect(consolidated.Preamble).To(ContainSubstring("Studium Elektrotechnik"))

			// No standalone boolean gates for the individual clauses.
			for _, q := range questions {
				if q.ID == "abschluss_qualifikation" {
					continue
				}
				Expect(q.Type == model.TypeBoolean && q.GateConfig != nil && q.GateConfig.IsGate).To(BeFalse(),
					"unexpected standalone gate %q", q.ID)
				Expect(q.Question).NotTo(ContainSubstring("Elektriker"))
			}
		})

		It("skips tier-1 restatements of consolidated clauses", func() {
			ex := &model.ExtractResult{
				MustHave:     []string{"Examen Pflegefachkraft"},
				Alternatives: []string{"Ausbildung Altenpflege", "Ausbildung Krankenpflege"},
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "examen_frage", Text: "Haben Sie ein Examen Pflegefachkraft?", Required: true, IsGate: true},
				},
			}

			questions := engine.Build(ctx, ex)
			Expect(byID(questions, "examen_frage")).To(BeNil())
			Expect(byID(questions, "abschluss_qualifikation")).NotTo(BeNil())
		})
	})

	Describe("gate chains without consolidation", func() {
		It("chains alternatives onto the gate with a terminal end message", func() {
			ex := &model.ExtractResult{
				MustHave:     []string{"Führerschein Klasse B"},
				Alternatives: []string{"Bereitschaft zum Erwerb"},
			}

			questions := engine.Build(ctx, ex)

			gate := byID(questions, "fuehrerschein_klasse_b")
			Expect(gate).NotTo(BeNil())
			Expect(gate.Type).To(Equal(model.TypeBoolean))
			Expect(gate.Required).To(BeTrue())
			Expect(gate.Priority).To(Equal(1))
			Expect(gate.GateConfig.IsGate).To(BeTrue())
			Expect(gate.GateConfig.HasAlternatives).To(BeTrue())

			alt := byID(questions, "bereitschaft_zum_erwerb")
			Expect(alt).NotTo(BeNil())
			Expect(alt.GateConfig.IsAlternative).To(BeTrue())
			Expect(alt.GateConfig.AlternativeFor).To(Equal(gate.ID))
			Expect(alt.GateConfig.FinalAlternative).To(BeTrue())
			Expect(alt.GateConfig.EndMessageIfAllNo).NotTo(BeEmpty())

			Expect(alt.Conditions).To(HaveLen(1))
			Expect(alt.Conditions[0].When.Field).To(Equal(gate.ID))
			Expect(alt.Conditions[0].When.Op).To(Equal("eq"))
			Expect(alt.Conditions[0].When.Value).To(Equal(false))
			Expect(alt.Conditions[0].Then.Action).To(Equal("ask"))
		})

		It("asks each later alternative only after the previous one failed", func() {
			ex := &model.ExtractResult{
				MustHave:     []string{"Examen"},
				Alternatives: []string{"Anerkennung"},
			}
			// One alternative only: no consolidation pre-scan trigger.
			questions := engine.Build(ctx, ex)

			alt := byID(questions, "anerkennung")
			Expect(alt).NotTo(BeNil())
			Expect(alt.Conditions[0].When.Field).To(Equal("examen"))
		})
	})

	Describe("site questions", func() {
		It("asks a free-text question when no sites were extracted", func() {
			questions := engine.Build(ctx, &model.ExtractResult{})
			q := byID(questions, "standort_frage")
			Expect(q).NotTo(BeNil())
			Expect(q.Type).To(Equal(model.TypeString))
		})

		It("confirms a single site with a boolean", func() {
			ex := &model.ExtractResult{Sites: []model.Site{{Label: "Hauptstandort 5"}}}
			questions := engine.Build(ctx, ex)

			q := byID(questions, "standort_bestaetigung")
			Expect(q).NotTo(BeNil())
			Expect(q.Type).To(Equal(model.TypeBoolean))
			Expect(q.Question).To(ContainSubstring("Hauptstandort 5"))
			Expect(byID(questions, "standort_auswahl")).To(BeNil())
		})

		It("offers a choice naming all three sites when three exist", func() {
			ex := &model.ExtractResult{Sites: []model.Site{
				{Label: "Gartenstraße 12"},
				{Label: "Bahnhofstraße 3"},
				{Label: "Ringstraße 7"},
			}}
			questions := engine.Build(ctx, ex)

			q := byID(questions, "standort_auswahl")
			Expect(q).NotTo(BeNil())
			Expect(q.Type).To(Equal(model.TypeChoice))
			Expect(q.Options).To(Equal([]string{"Gartenstraße 12", "Bahnhofstraße 3", "Ringstraße 7"}))
			Expect(q.Preamble).To(ContainSubstring("Gartenstraße 12"))
			Expect(q.Preamble).To(ContainSubstring("Bahnhofstraße 3"))
			Expect(q.Preamble).To(ContainSubstring("Ringstraße 7"))
		})
	})

	Describe("department questions", func() {
		It("uses Stationen wording for healthcare departments", func() {
			ex := &model.ExtractResult{AllDepartments: []string{"Intensivstation", "Notaufnahme", "Geriatrie"}}
			questions := engine.Build(ctx, ex)

			q := byID(questions, "einsatzbereich_auswahl")
			Expect(q).NotTo(BeNil())
			Expect(q.Question).To(ContainSubstring("Stationen"))
			Expect(q.Options).To(Equal(ex.AllDepartments))
		})

		It("suppresses the generated question when tier 1 already covers departments", func() {
			ex := &model.ExtractResult{
				AllDepartments: []string{"Intensivstation", "Notaufnahme"},
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "abteilung_wahl", Text: "In welcher Abteilung möchten Sie arbeiten?"},
				},
			}
			questions := engine.Build(ctx, ex)
			Expect(byID(questions, "abteilung_wahl")).NotTo(BeNil())
			Expect(byID(questions, "einsatzbereich_auswahl")).To(BeNil())
		})
	})

	Describe("priority interest questions", func() {
		It("emits one interest question per priority area", func() {
			ex := &model.ExtractResult{
				Priorities: []model.Priority{
					{Label: "Intensivstation", Reason: "hoher Bedarf", Level: 1},
					{Label: "Notaufnahme", Level: 2},
					{Label: "Geriatrie", Level: 3},
				},
			}
			questions := engine.Build(ctx, ex)

			intensiv := byID(questions, "interesse_intensivstation")
			Expect(intensiv).NotTo(BeNil())
			Expect(intensiv.Question).To(ContainSubstring("Intensivstation"))
			Expect(byID(questions, "interesse_notaufnahme")).NotTo(BeNil())
			Expect(byID(questions, "interesse_geriatrie")).NotTo(BeNil())
		})

		It("carries the urgency level and reason into the question", func() {
			ex := &model.ExtractResult{
				Priorities: []model.Priority{
					{Label: "Intensivstation", Reason: "hoher Bedarf", Level: 1},
					{Label: "Geriatrie", Level: 3},
					{Label: "Palliativ"},
				},
			}
			questions := engine.Build(ctx, ex)

			intensiv := byID(questions, "interesse_intensivstation")
			Expect(intensiv.Priority).To(Equal(1))
			Expect(intensiv.HelpText).To(Equal("hoher Bedarf"))

			Expect(byID(questions, "interesse_geriatrie").Priority).To(Equal(3))

			// No urgency level extracted: middle priority, no help text.
			palliativ := byID(questions, "interesse_palliativ")
			Expect(palliativ.Priority).To(Equal(2))
			Expect(palliativ.HelpText).To(BeEmpty())
		})

		It("skips areas a tier-1 question already covers", func() {
			ex := &model.ExtractResult{
				Priorities: []model.Priority{
					{Label: "Intensivstation", Level: 1},
				},
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "intensiv", Text: "Intensivstation"},
				},
			}
			questions := engine.Build(ctx, ex)
			Expect(byID(questions, "interesse_intensivstation")).To(BeNil())
		})
	})

	Describe("tier 1", func() {
		It("skips malformed protocol questions without failing", func() {
			ex := &model.ExtractResult{
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "leer", Text: "   "},
					{ID: "ok", Text: "Haben Sie Schichterfahrung?"},
				},
			}
			questions := engine.Build(ctx, ex)
			Expect(byID(questions, "leer")).To(BeNil())
			Expect(byID(questions, "ok")).NotTo(BeNil())
			Expect(byID(questions, "ok").Type).To(Equal(model.TypeBoolean))
		})

		It("skips name and address questions", func() {
			ex := &model.ExtractResult{
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "name", Text: "Wie heißen Sie und wie lautet Ihre Adresse?"},
				},
			}
			questions := engine.Build(ctx, ex)
			Expect(byID(questions, "name")).To(BeNil())
		})

		It("rewrites awkward phrasings", func() {
			ex := &model.ExtractResult{
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "intensiv_interesse", Text: "Interesse am Bereich Intensivpflege"},
				},
			}
			questions := engine.Build(ctx, ex)
			q := byID(questions, "intensiv_interesse")
			Expect(q).NotTo(BeNil())
			Expect(q.Question).To(Equal("Interessieren Sie sich für den Bereich Intensivpflege?"))
		})
	})

	Describe("tier 2", func() {
		It("emits uncovered verbatim candidates as optional priority-2 questions", func() {
			ex := &model.ExtractResult{
				VerbatimCandidates: []model.VerbatimCandidate{
					{Text: "Welche Software kennen Sie bereits?", IsRealQuestion: true, Source: model.Source{Verbatim: true}},
					{Text: "Notiz ohne Frage", IsRealQuestion: false},
				},
			}
			questions := engine.Build(ctx, ex)

			q := byID(questions, "welche_software_kennen_sie_bereits")
			Expect(q).NotTo(BeNil())
			Expect(q.Required).To(BeFalse())
			Expect(q.Priority).To(Equal(2))
			Expect(q.Source.Verbatim).To(BeTrue())
			Expect(byID(questions, "notiz_ohne_frage")).To(BeNil())
		})

		It("skips candidates whose topic tier 1 already covered", func() {
			ex := &model.ExtractResult{
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "schicht", Text: "Können Sie im Nachtdienst arbeiten?"},
				},
				VerbatimCandidates: []model.VerbatimCandidate{
					{Text: "Können Sie im Nachtdienst arbeiten?", IsRealQuestion: true},
				},
			}
			questions := engine.Build(ctx, ex)

			count := 0
			for _, q := range questions {
				if strings.Contains(q.Question, "Nachtdienst") {
					count++
				}
			}
			Expect(count).To(Equal(1))
		})
	})

	Describe("tier 4", func() {
		It("always includes motivation, start date and callback questions", func() {
			questions := engine.Build(ctx, &model.ExtractResult{})
			Expect(byID(questions, "motivation_bewerbung")).NotTo(BeNil())
			Expect(byID(questions, "startdatum")).NotTo(BeNil())

			callback := byID(questions, "rueckruf_zeit")
			Expect(callback).NotTo(BeNil())
			Expect(callback.Options).To(Equal([]string{"Vormittags", "Nachmittags", "Früher Abend", "Flexibel"}))
		})

		It("adds career questions only when the extractor signalled them", func() {
			without := engine.Build(ctx, &model.ExtractResult{})
			Expect(byID(without, "karriere_station_1")).To(BeNil())

			with := engine.Build(ctx, &model.ExtractResult{CareerQuestionsNeeded: true})
			Expect(byID(with, "karriere_station_1")).NotTo(BeNil())
			Expect(byID(with, "karriere_station_3")).NotTo(BeNil())
		})
	})

	Describe("coverage", func() {
		It("never produces two questions with the same topic key unless chained", func() {
			ex := &model.ExtractResult{
				MustHave:     []string{"Examen Pflegefachkraft"},
				Alternatives: []string{"Ausbildung Altenpflege", "Ausbildung Krankenpflege"},
				Sites:        []model.Site{{Label: "Gartenstraße 12"}, {Label: "Ringstraße 7"}},
				AllDepartments: []string{"Intensivstation", "OP"},
				Priorities:   []model.Priority{{Label: "Intensiv", Level: 1}},
				Constraints: model.Constraints{
					WorkTime: model.WorkTime{FullTime: true, PartTime: true},
				},
				ProtocolQuestions: []model.ProtocolQuestion{
					{ID: "impfung", Text: "Sind Sie vollständig geimpft?", Required: true},
				},
			}
			questions := engine.Build(ctx, ex)

			seen := map[string]string{}
			for _, q := range questions {
				if q.GateConfig != nil && q.GateConfig.IsAlternative {
					continue
				}
				key := structure.TopicKey(q.Question)
				Expect(seen).NotTo(HaveKey(key), "topic %q covered by both %q and %q", key, seen[key], q.ID)
				seen[key] = q.ID
			}
		})
	})
})
