package scoring

// Policy gathers every tunable point value, floor and confidence constant
// in the scoring pipeline. The algorithm shape (additive fold, clamp,
// weighted aggregation, override floors) is fixed; only these numbers are
// meant to be tuned per deployment.
type Policy struct {
	Editorial    EditorialPolicy
	Website      WebsitePolicy
	Submission   SubmissionPolicy
	Fees         FeePolicy
	Content      ContentPolicy
	Contact      ContactPolicy
	Bibliometric BibliometricPolicy
	Critical     CriticalPolicy
	Confidence   ConfidencePolicy
}

type EditorialPolicy struct {
	NoBoardPoints       float64
	TinyBoardPoints     float64
	SmallBoardPoints    float64
	TinyBoardMax        int
	SmallBoardMax       int
	NoChiefEditorPoints float64
	LargeBoardCredit    float64
}

type WebsitePolicy struct {
	NoSSLPoints       float64
	ErrorStatusPoints float64
	SlowPoints        float64
	VerySlowPoints    float64
	ThinPagePoints    float64
	ThinPageWords     int
}

type SubmissionPolicy struct {
	NoGuidelinesPoints float64
	NoPeerReviewPoints float64
	FastReviewPoints   float64
}

type FeePolicy struct {
	HiddenFeesPoints          float64
	CryptoPoints              float64
	WireOnlyPoints            float64
	PaymentBeforeReviewPoints float64
	HighFeePoints             float64
	HighFeeUSD                float64
	DisclosedCredit           float64
}

type ContentPolicy struct {
	PerPhrasePoints       float64
	PhrasePointsCap       float64
	ThinContentPoints     float64
	ThinContentWords      int
	LanguageUnclearPoints float64
}

type ContactPolicy struct {
	NoContactPoints     float64
	SingleContactPoints float64
	NoEmailPoints       float64
	MultiChannelCredit  float64
}

type BibliometricPolicy struct {
	UnverifiedImpactFactorPoints float64
	UnindexedImpactFactorPoints  float64
	NoISSNPoints                 float64
	ISSNCredit                   float64
}

// CriticalPolicy sets the override floor applied to the overall score when
// a hallmark predatory practice is detected.
type CriticalPolicy struct {
	GuaranteedAcceptanceFloor     float64
	PaymentBeforeReviewFloor      float64
	UnverifiableImpactFactorFloor float64
	TyposquatFloor                float64
}

// ConfidencePolicy tunes the confidence heuristic.
type ConfidencePolicy struct {
	Base                    float64
	AgreementBonus          float64
	AgreementSpread         float64
	DisagreementPenalty     float64
	DisagreementLow         float64
	DisagreementHigh        float64
	MissingDimensionPenalty float64
	FailedLookupPenalty     float64
}

// DefaultPolicy returns the production defaults.
func DefaultPolicy() Policy {
	return Policy{
		Editorial: EditorialPolicy{
			NoBoardPoints:       40,
			TinyBoardPoints:     20,
			SmallBoardPoints:    10,
			TinyBoardMax:        4,
			SmallBoardMax:       9,
			NoChiefEditorPoints: 15,
			LargeBoardCredit:    10,
		},
		Website: WebsitePolicy{
			NoSSLPoints:       35,
			ErrorStatusPoints: 25,
			SlowPoints:        10,
			VerySlowPoints:    20,
			ThinPagePoints:    20,
			ThinPageWords:     150,
		},
		Submission: SubmissionPolicy{
			NoGuidelinesPoints: 30,
			NoPeerReviewPoints: 30,
			FastReviewPoints:   25,
		},
		Fees: FeePolicy{
			HiddenFeesPoints:          15,
			CryptoPoints:              40,
			WireOnlyPoints:            25,
			PaymentBeforeReviewPoints: 30,
			HighFeePoints:             15,
			HighFeeUSD:                3000,
			DisclosedCredit:           5,
		},
		Content: ContentPolicy{
			PerPhrasePoints:       15,
			PhrasePointsCap:       60,
			ThinContentPoints:     15,
			ThinContentWords:      300,
			LanguageUnclearPoints: 10,
		},
		Contact: ContactPolicy{
			NoContactPoints:     40,
			SingleContactPoints: 20,
			NoEmailPoints:       15,
			MultiChannelCredit:  5,
		},
		Bibliometric: BibliometricPolicy{
			UnverifiedImpactFactorPoints: 45,
			UnindexedImpactFactorPoints:  25,
			NoISSNPoints:                 20,
			ISSNCredit:                   5,
		},
		Critical: CriticalPolicy{
			GuaranteedAcceptanceFloor:     75,
			PaymentBeforeReviewFloor:      70,
			UnverifiableImpactFactorFloor: 70,
			TyposquatFloor:                75,
		},
		Confidence: ConfidencePolicy{
			Base:                    70,
			AgreementBonus:          10,
			AgreementSpread:         25,
			DisagreementPenalty:     15,
			DisagreementLow:         20,
			DisagreementHigh:        80,
			MissingDimensionPenalty: 8,
			FailedLookupPenalty:     5,
		},
	}
}
