package policy_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"voiceki.app/catalog/internal/categorize"
	"voiceki.app/catalog/internal/model"
	"voiceki.app/catalog/internal/policy"
)

func sampleQuestions() []model.Question {
	return []model.Question{
		{
			ID:            "datenschutz_einwilligung",
			Question:      "Sind Sie mit der Speicherung Ihrer Daten gemäß DSGVO einverstanden?",
			Type:          model.TypeBoolean,
			Required:      true,
			Priority:      2,
			Category:      categorize.CategoryZusaetzlich,
			CategoryOrder: 9,
		},
		{
			ID:            "examen",
			Question:      "Haben Sie ein abgeschlossenes Examen?",
			Type:          model.TypeBoolean,
			Required:      true,
			Priority:      1,
			Category:      categorize.CategoryStandardQuali,
			CategoryOrder: 3,
			GateConfig:    &model.GateConfig{IsGate: true},
		},
		{
			ID:            "standort_bestaetigung",
			Question:      "Unser Standort ist Hamburg. Passt das für Sie?",
			Type:          model.TypeBoolean,
			Required:      true,
			Priority:      1,
			Category:      categorize.CategoryStandort,
			CategoryOrder: 5,
		},
		{
			ID:            "einsatzbereich_auswahl",
			Question:      "In welcher Station möchten Sie arbeiten?",
			Type:          model.TypeChoice,
			Options:       []string{"Intensivstation", "OP", "Notaufnahme"},
			Required:      true,
			Priority:      1,
			Category:      categorize.CategoryEinsatzbereiche,
			CategoryOrder: 6,
		},
		{
			ID:            "wechsel_grund",
			Question:      "Was ist der Grund für Ihren Wechselwunsch?",
			Type:          model.TypeString,
			Priority:      3,
			Category:      categorize.CategoryZusaetzlich,
			CategoryOrder: 9,
		},
	}
}

func findQuestion(questions []model.Question, id string) *model.Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

var _ = Describe("Resolver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("consent first", func() {
		It("pins consent questions ahead of every category", func() {
			resolver := policy.NewResolver(policy.LevelBasic)
			questions, audit := resolver.Resolve(ctx, sampleQuestions())

			consent := findQuestion(questions, "datenschutz_einwilligung")
			Expect(consent).NotTo(BeNil())
			Expect(consent.Priority).To(Equal(1))
			Expect(consent.CategoryOrder).To(Equal(0))
			Expect(consent.SlotConfig).NotTo(BeNil())
			Expect(consent.SlotConfig.FillsSlot).To(Equal("consent_given"))
			Expect(consent.SlotConfig.ConfidenceThreshold).To(BeNumerically("==", 0.95))

			for _, q := range questions {
				if q.ID == "datenschutz_einwilligung" {
					continue
				}
				Expect(consent.CategoryOrder).To(BeNumerically("<", q.CategoryOrder),
					"consent must sort before %s", q.ID)
			}
			Expect(audit).To(ContainElement("consent_first: datenschutz_einwilligung"))
		})
	})

	Describe("slot dependency", func() {
		It("assigns slots to required questions matching the vocabulary", func() {
			resolver := policy.NewResolver(policy.LevelBasic)
			questions, audit := resolver.Resolve(ctx, sampleQuestions())

			standort := findQuestion(questions, "standort_bestaetigung")
			Expect(standort.SlotConfig).NotTo(BeNil())
			Expect(standort.SlotConfig.FillsSlot).To(Equal("standort"))
			Expect(standort.SlotConfig.ConfidenceThreshold).To(BeNumerically("==", 0.8))
			Expect(audit).To(ContainElement("slot_dependency: standort_bestaetigung"))
		})

		It("leaves optional questions without slots", func() {
			resolver := policy.NewResolver(policy.LevelBasic)
			questions, _ := resolver.Resolve(ctx, sampleQuestions())

			Expect(findQuestion(questions, "wechsel_grund").SlotConfig).To(BeNil())
		})
	})

	Describe("gate sequence", func() {
		It("pins gates to the qualification category and records the slot", func() {
			resolver := policy.NewResolver(policy.LevelBasic)
			questions, audit := resolver.Resolve(ctx, sampleQuestions())

			gate := findQuestion(questions, "examen")
			Expect(gate.Priority).To(Equal(1))
			Expect(gate.Category).To(Equal(categorize.CategoryStandardQuali))
			Expect(gate.CategoryOrder).To(Equal(3))
			Expect(gate.GateConfig.RequiresSlots).To(ContainElement("qualifikation"))
			Expect(audit).To(ContainElement("gate_sequence: examen"))
		})

		It("falls back to a synthetic slot name when the gate fills none", func() {
			questions := []model.Question{{
				ID:         "fuehrerschein",
				Question:   "Besitzen Sie einen gültigen Pilotenschein?",
				Type:       model.TypeBoolean,
				Required:   true,
				GateConfig: &model.GateConfig{IsGate: true},
			}}
			resolver := policy.NewResolver(policy.LevelBasic)
			resolved, _ := resolver.Resolve(ctx, questions)

			Expect(resolved[0].GateConfig.RequiresSlots).To(ContainElement("gate_fuehrerschein"))
		})
	})

	Describe("keyword triggers", func() {
		It("records follow-up keywords at standard level", func() {
			resolver := policy.NewResolver(policy.LevelStandard)
			questions, audit := resolver.Resolve(ctx, sampleQuestions())

			dept := findQuestion(questions, "einsatzbereich_auswahl")
			Expect(dept.GateConfig).NotTo(BeNil())
			Expect(dept.GateConfig.ContextTriggers).To(HaveKey("keywords_to_follow_up"))
			Expect(dept.GateConfig.ContextTriggers["keywords_to_follow_up"]).To(
				ContainElements("Intensiv", "OP", "Notaufnahme"))
			Expect(audit).To(ContainElement("keyword_trigger: einsatzbereich_auswahl"))
		})

		It("skips keyword triggers at basic level", func() {
			resolver := policy.NewResolver(policy.LevelBasic)
			questions, _ := resolver.Resolve(ctx, sampleQuestions())

			Expect(findQuestion(questions, "einsatzbereich_auswahl").GateConfig).To(BeNil())
		})
	})

	Describe("diversification", func() {
		It("hints a style switch after two consecutive booleans in one block", func() {
			questions := []model.Question{
				{ID: "b1", Question: "Frage eins?", Type: model.TypeBoolean, CategoryOrder: 3},
				{ID: "b2", Question: "Frage zwei?", Type: model.TypeBoolean, CategoryOrder: 3},
				{ID: "b3", Question: "Frage drei?", Type: model.TypeBoolean, CategoryOrder: 3},
			}
			resolver := policy.NewResolver(policy.LevelStandard)
			resolved, audit := resolver.Resolve(ctx, questions)

			third := findQuestion(resolved, "b3")
			Expect(third.ConversationHints).NotTo(BeNil())
			Expect(third.ConversationHints.DiversifyAfter).To(Equal("boolean"))
			Expect(audit).To(ContainElement("diversification: b3"))

			Expect(findQuestion(resolved, "b1").ConversationHints).To(BeNil())
			Expect(findQuestion(resolved, "b2").ConversationHints).To(BeNil())
		})

		It("resets the run when a non-boolean question intervenes", func() {
			questions := []model.Question{
				{ID: "b1", Question: "Frage eins?", Type: model.TypeBoolean, CategoryOrder: 3},
				{ID: "b2", Question: "Frage zwei?", Type: model.TypeBoolean, CategoryOrder: 3},
				{ID: "s1", Question: "Erzählen Sie mehr.", Type: model.TypeString, CategoryOrder: 3},
				{ID: "b3", Question: "Frage drei?", Type: model.TypeBoolean, CategoryOrder: 3},
			}
			resolver := policy.NewResolver(policy.LevelStandard)
			resolved, _ := resolver.Resolve(ctx, questions)

			hints := findQuestion(resolved, "b3").ConversationHints
			if hints != nil {
				Expect(hints.DiversifyAfter).To(BeEmpty())
			}
		})
	})

	Describe("confidence check", func() {
		It("gives required questions a clarification template", func() {
			resolver := policy.NewResolver(policy.LevelStandard)
			questions, audit := resolver.Resolve(ctx, sampleQuestions())

			standort := findQuestion(questions, "standort_bestaetigung")
			Expect(standort.ConversationHints).NotTo(BeNil())
			Expect(standort.ConversationHints.OnUnclearAnswer).To(ContainSubstring("{interpretation}"))
			Expect(standort.ConversationHints.ConfidenceBoostPhrases).To(ContainElements("ja", "nein"))
			Expect(audit).To(ContainElement("confidence_check: standort_bestaetigung"))
		})

		It("leaves optional questions without hints", func() {
			resolver := policy.NewResolver(policy.LevelStandard)
			questions, _ := resolver.Resolve(ctx, sampleQuestions())

			Expect(findQuestion(questions, "wechsel_grund").ConversationHints).To(BeNil())
		})
	})

	Describe("empathy enhancement", func() {
		It("softens gate rejections at advanced level only", func() {
			advanced := policy.NewResolver(policy.LevelAdvanced)
			questions, audit := advanced.Resolve(ctx, sampleQuestions())

			gate := findQuestion(questions, "examen")
			Expect(gate.ConversationHints).NotTo(BeNil())
			Expect(gate.ConversationHints.OnNegativeAnswer).To(ContainSubstring("Offenheit"))
			Expect(audit).To(ContainElement("empathy: examen"))

			standard := policy.NewResolver(policy.LevelStandard)
			stdQuestions, stdAudit := standard.Resolve(ctx, sampleQuestions())
			stdGate := findQuestion(stdQuestions, "examen")
			Expect(stdGate.ConversationHints.OnNegativeAnswer).To(BeEmpty())
			Expect(stdAudit).NotTo(ContainElement("empathy: examen"))
		})
	})

	Describe("levels", func() {
		It("is monotone: higher levels apply a superset of policies", func() {
			basicResolver := policy.NewResolver(policy.LevelBasic)
			_, basicAudit := basicResolver.Resolve(ctx, sampleQuestions())

			advancedResolver := policy.NewResolver(policy.LevelAdvanced)
			_, advancedAudit := advancedResolver.Resolve(ctx, sampleQuestions())

			for _, entry := range basicAudit {
				Expect(advancedAudit).To(ContainElement(entry))
			}
			Expect(len(advancedAudit)).To(BeNumerically(">", len(basicAudit)))
		})

		It("parses levels with a standard default", func() {
			Expect(policy.ParseLevel("basic")).To(Equal(policy.LevelBasic))
			Expect(policy.ParseLevel("advanced")).To(Equal(policy.LevelAdvanced))
			Expect(policy.ParseLevel("")).To(Equal(policy.LevelStandard))
			Expect(policy.ParseLevel("unknown")).To(Equal(policy.LevelStandard))
		})
	})

	Describe("idempotency", func() {
		It("produces the same questions and audit when run twice", func() {
			resolver := policy.NewResolver(policy.LevelAdvanced)
			once, firstAudit := resolver.Resolve(ctx, sampleQuestions())
			twice, secondAudit := resolver.Resolve(ctx, once)

			Expect(twice).To(Equal(once))
			for _, entry := range firstAudit {
				Expect(secondAudit).To(ContainElement(entry))
			}
		})
	})
})
