// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package taxonomy

import (
	"sync"

	"github.com/poiesic/filingqa/core"
)

// Section names used by the default concepts.
const (
	SectionBusiness           = "Item 1 - Business"
	SectionRiskFactors        = "Item 1A - Risk Factors"
	SectionMDA                = "Item 7 - Management's Discussion"
	SectionMarketRisk         = "Item 7A - Quantitative and Qualitative Disclosures About Market Risk"
	SectionFinancials         = "Item 8 - Financial Statements"
	SectionOperations         = "Consolidated Statements of Operations"
	SectionBalanceSheets      = "Consolidated Balance Sheets"
	SectionCDA                = "Compensation Discussion and Analysis"
	SectionCompTables         = "Executive Compensation Tables"
	SectionBeneficialOwners   = "Security Ownership of Certain Beneficial Owners"
	SectionFinancialCondition = "Item 2 - Management's Discussion of Financial Condition"
	SectionCombinations       = "Business Combinations"
)

// DefaultConcepts returns the built-in concept table.
func DefaultConcepts() []Concept {
	const (
		k10 = core.FilingType10K
		q10 = core.FilingType10Q
		k8  = core.FilingType8K
	)
	return []Concept{
		{
			ID: "revenue_performance",
			Keywords: []string{
				"revenue", "sales", "income", "earnings", "profit", "performance",
				"top line", "net sales", "total revenue", "operating revenue", "growth", "decline",
			},
			Sections:    []string{SectionBusiness, SectionMDA, SectionFinancials, SectionOperations},
			FilingTypes: []string{k10, q10, k8},
			XBRLTags:    []string{"Revenues", "SalesRevenueNet"},
		},
		{
			ID: "risk_factors",
			Keywords: []string{
				"risk", "risks", "risk factors", "uncertainties", "challenges", "threats",
				"vulnerabilities", "material adverse", "cyber", "cybersecurity", "regulatory risk", "market risk",
			},
			Sections:    []string{SectionRiskFactors, SectionMarketRisk},
			FilingTypes: []string{k10, q10, k8},
			XBRLTags:    []string{"RiskFactors", "MarketRiskDisclosures"},
		},
		{
			ID: "research_development",
			Keywords: []string{
				"research and development", "r&d", "innovation", "technology", "patents",
				"intellectual property", "development costs", "research expenses", "innovation investment",
			},
			Sections:    []string{SectionBusiness, SectionMDA, SectionFinancials},
			FilingTypes: []string{k10, q10},
			XBRLTags:    []string{"ResearchAndDevelopmentExpense"},
		},
		{
			ID: "working_capital",
			Keywords: []string{
				"working capital", "current assets", "current liabilities", "accounts receivable",
				"inventory", "accounts payable", "cash conversion", "liquidity",
			},
			Sections:    []string{SectionMDA, SectionFinancials, SectionBalanceSheets},
			FilingTypes: []string{k10, q10},
			XBRLTags:    []string{"WorkingCapital", "AssetsCurrent", "LiabilitiesCurrent"},
		},
		{
			ID: "executive_compensation",
			Keywords: []string{
				"executive compensation", "ceo pay", "executive pay", "compensation committee",
				"salary", "bonus", "stock options", "equity compensation",
			},
			Sections:    []string{SectionCDA, SectionCompTables},
			FilingTypes: []string{core.FilingTypeProxy},
			XBRLTags:    []string{"CompensationCosts", "ShareBasedCompensation"},
		},
		{
			ID: "insider_trading",
			Keywords: []string{
				"insider trading", "insider transactions", "form 3", "form 4", "form 5",
				"beneficial ownership", "director transactions", "stock purchases", "stock sales",
			},
			Sections: []string{SectionBeneficialOwners},
			FilingTypes: []string{
				core.FilingTypeForm3, core.FilingTypeForm4, core.FilingTypeForm5, core.FilingTypeProxy,
			},
			XBRLTags: []string{"SecurityOwned", "TransactionShares"},
		},
		{
			ID: "climate_esg",
			Keywords: []string{
				"climate", "climate change", "environmental", "sustainability", "esg",
				"carbon", "emissions", "renewable energy", "climate risk",
			},
			Sections:    []string{SectionRiskFactors, SectionBusiness, SectionMDA},
			FilingTypes: []string{k10, q10, k8},
			XBRLTags:    []string{"EnvironmentalCompliance"},
		},
		{
			ID: "mergers_acquisitions",
			Keywords: []string{
				"merger", "acquisition", "m&a", "business combination", "purchase",
				"divestiture", "joint venture", "strategic alliance",
			},
			Sections:    []string{SectionFinancialCondition, SectionFinancials, SectionCombinations},
			FilingTypes: []string{k8, k10, q10},
			XBRLTags:    []string{"BusinessCombinations", "Goodwill"},
		},
		{
			ID: "competitive_advantage",
			Keywords: []string{
				"competitive advantage", "moat", "differentiation", "market position",
				"barriers to entry", "competitive strengths", "market leadership", "brand strength",
			},
			Sections:    []string{SectionBusiness, SectionRiskFactors, SectionMDA},
			FilingTypes: []string{k10},
			XBRLTags:    []string{"BusinessDescription"},
		},
		{
			ID: "ai_automation",
			Keywords: []string{
				"artificial intelligence", "ai", "machine learning", "automation", "robotics",
				"digital transformation", "technology adoption", "algorithmic",
			},
			Sections:    []string{SectionBusiness, SectionRiskFactors, SectionMDA},
			FilingTypes: []string{k10, q10, k8},
			XBRLTags:    []string{"TechnologyInvestments"},
		},
	}
}

var defaultTaxonomy = sync.OnceValue(func() *Taxonomy {
	t, err := New(DefaultConcepts())
	if err != nil {
		panic("taxonomy: invalid default concepts: " + err.Error())
	}
	return t
})

// Default returns the built-in taxonomy. The instance is shared and immutable.
func Default() *Taxonomy {
	return defaultTaxonomy()
}
