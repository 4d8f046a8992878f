package lexicon

// Built-in vocabulary for Brazilian retail receipt descriptions. Entries are
// written without diacritics; New folds anything supplied from outside.

var defaultStopWords = []string{
	"COM", "SEM", "E", "OU", "DO", "DA", "DE", "NO", "NA", "EM",
	"PARA", "POR", "ATE", "TIPO", "MARCA", "TAMANHO",
}

var defaultVariantIndicators = []string{
	// flavours
	"SABOR", "SABORES", "CHOCOLATE", "BAUNILHA", "MORANGO", "UVA", "LARANJA", "LIMAO", "MENTA", "NATURAL",
	// styles
	"LIGHT", "DIET", "ZERO", "INTEGRAL", "NORMAL", "TRADICIONAL", "ESPECIAL", "PREMIUM", "CLASSICO",
	// colours
	"BRANCO", "PRETO", "AZUL", "VERDE", "VERMELHO", "AMARELO", "DOURADO", "CLARO", "ESCURO",
	// texture
	"CREMOSO", "LIQUIDO", "SOLIDO", "POWDER", "CRISTAL", "GRANULADO", "FINO", "GROSSO",
}

var defaultCoreIndicators = []string{
	"ARROZ", "FEIJAO", "ACUCAR", "SAL", "CAFE", "LEITE", "OVO", "OVOS", "FARINHA", "MACARRAO", "MASSA",
	"REFRIGERANTE", "SUCO", "AGUA", "CERVEJA",
	"BANANA", "MACA", "LARANJA", "UVA", "LIMAO",
	"CARNE", "FRANGO", "PEIXE", "PORCO", "LINGUICA",
	"PAO", "BISCOITO", "BOLO", "TORRADA",
	"QUEIJO", "IOGURTE", "MANTEIGA", "MARGARINA",
	"OLEO", "VINAGRE", "MOLHO", "TEMPERO", "CONDIMENTO",
	"SABAO", "DETERGENTE", "AMACIANTE", "DESINFETANTE",
}

var defaultAbbreviations = map[string]string{
	// beverages
	"REFRI": "REFRIGERANTE", "REFRIGER": "REFRIGERANTE", "REF": "REFRIGERANTE",
	"COCA": "COCA-COLA", "PEPSI": "PEPSI-COLA", "GUARANA": "GUARANA",
	"CAF": "CAFE", "CAFE": "CAFE", "AGUA": "AGUA", "H2O": "AGUA",
	// food
	"BISCT": "BISCOITO", "BISC": "BISCOITO", "CHOC": "CHOCOLATE", "CHOCOL": "CHOCOLATE",
	"FRANG": "FRANGO", "FRG": "FRANGO", "QUEIJ": "QUEIJO", "QJ": "QUEIJO",
	"PAO": "PAO", "PAOZ": "PAO", "ACUC": "ACUCAR", "ACUCAR": "ACUCAR", "OLEO": "OLEO",
	"MARG": "MARGARINA", "MANTE": "MANTEIGA", "MANT": "MANTEIGA",
	"MACARR": "MACARRAO", "MAC": "MACARRAO", "MACARRO": "MACARRAO",
	// brands and sizes
	"NEST": "NESTLE", "NESTLE": "NESTLE", "GAROTO": "GAROTO", "PRESTIGIO": "PRESTIGIO", "LACTA": "LACTA",
	"POCAM": "POCA", "POCA": "POUCA", "GDE": "GRANDE", "PEQ": "PEQUENO", "PQN": "PEQUENO",
	"MED": "MEDIO", "MEDIO": "MEDIO", "MINI": "PEQUENO",
	// fruits
	"MEXER": "MEXERICA", "MEXERIC": "MEXERICA", "BANAN": "BANANA", "MELAN": "MELANCIA", "MELANCIA": "MELANCIA",
	"MELO": "MELAO", "MELAO": "MELAO", "CATUR": "CATURRA", "PRAT": "PRATA",
	// vegetables
	"CEBOL": "CEBOLA", "MORAN": "MORANGA", "MORANG": "MORANGA", "JAPON": "JAPONESA", "JAPONESA": "JAPONESA",
	"MIUD": "MIUDA", "MIUDA": "MIUDA",
	// units and packages
	"KG": "QUILOGRAMA", "KILO": "QUILOGRAMA", "KILOS": "QUILOGRAMA", "G": "GRAMA", "GR": "GRAMA",
	"L": "LITRO", "LIT": "LITRO", "ML": "MILILITRO", "UN": "UNIDADE", "UND": "UNIDADE", "UNID": "UNIDADE",
	"PC": "PECA", "PCT": "PACOTE", "PACOT": "PACOTE", "CX": "CAIXA", "LAT": "LATA",
	"GAR": "GARRAFA", "GARRAF": "GARRAFA", "PT": "PACOTE", "EMB": "EMBALAGEM",
	// colours
	"VM": "VERMELHO", "VD": "VERDE", "AM": "AMARELO", "AZ": "AZUL", "BR": "BRANCO",
	"PTO": "PRETO", "RS": "ROSA", "RX": "ROXO",
	// cleaning and hygiene
	"DETERG": "DETERGENTE", "DET": "DETERGENTE", "SABAO": "SABAO", "SB": "SABAO",
	"SHAMP": "SHAMPOO", "SH": "SHAMPOO", "COND": "CONDICIONADOR", "DESOD": "DESODORANTE", "PERFUM": "PERFUME",
	// staples
	"LEITE": "LEITE", "LT": "LEITE", "CERT": "CERVEJA", "CERV": "CERVEJA", "ARROZ": "ARROZ",
	"FEIJ": "FEIJAO", "FEIJAO": "FEIJAO",
}

// Variants[0] is the canonical form written into normalized text.
var defaultBrands = []Brand{
	{Canonical: "COCA", Variants: []string{"COCA", "COCACOLA", "COCA-COLA"}},
	{Canonical: "PEPSI", Variants: []string{"PEPSI", "PEPSI-COLA"}},
	{Canonical: "NESTLE", Variants: []string{"NESTLE"}},
	{Canonical: "UNILEVER", Variants: []string{"UNILEVER", "UNI"}},
	{Canonical: "GAROTO", Variants: []string{"GAROTO", "GAR"}},
	{Canonical: "SADIA", Variants: []string{"SADIA", "SAD"}},
	{Canonical: "PERDIGAO", Variants: []string{"PERDIGAO", "PERD"}},
}

// Order matters: the first category with a keyword in the text wins.
var defaultCategories = []Category{
	{Name: "beverages", Keywords: []string{
		"REFRIGERANTE", "SUCO", "AGUA", "CERVEJA", "VINHO", "CAFE", "CHA", "ENERGETICO", "ISOTONICO",
		"GUARANA", "COCA", "PEPSI", "SPRITE", "FANTA", "DOLLY", "SUKITA", "REFRI", "REFRIGER",
		"BEBIDA", "DRINK", "SODA", "H2O", "AGUA DE COCO",
	}},
	{Name: "fruits", Keywords: []string{
		"BANANA", "MACA", "LARANJA", "UVA", "MANGA", "ABACAXI", "MORANGO", "MEXERICA", "TANGERINA",
		"LIMAO", "KIWI", "PERA", "CAQUI", "MELANCIA", "MELAO", "MAMAO", "GOIABA", "MARACUJA",
		"PESSEGO", "AMEIXA", "COCO", "ABACATE", "CARAMBOLA", "PITANGA", "JABUTICABA", "ACAI",
		"CUPUACU", "PITAYA", "ROMA", "FRUTA", "FRUTAS",
	}},
	{Name: "vegetables", Keywords: []string{
		"ALFACE", "TOMATE", "CEBOLA", "ALHO", "CENOURA", "BATATA", "ABOBRINHA", "BROCOLIS", "COUVE",
		"ESPINAFRE", "RUCULA", "AGRIAO", "PEPINO", "PIMENTAO", "BERINJELA", "CHUCHU", "MANDIOCA",
		"INHAME", "BETERRABA", "RABANETE", "NABO", "ACELGA", "VERDURA", "VERDURAS", "LEGUME",
		"LEGUMES", "HORTIFRUTI", "HORTALICA",
	}},
	{Name: "dairy", Keywords: []string{
		"LEITE", "QUEIJO", "IOGURTE", "MANTEIGA", "NATA", "CREME", "REQUEIJAO", "MUSSARELA",
		"MOZZARELLA", "PRATO", "CHEDDAR", "COALHO", "RICOTA", "CREAM CHEESE", "COTTAGE",
		"GORGONZOLA", "PARMESAO", "LACTEO", "LATICINIO",
	}},
	{Name: "meat", Keywords: []string{
		"CARNE", "FRANGO", "PEIXE", "PORCO", "BOI", "LINGUICA", "SALSICHA", "PRESUNTO", "MORTADELA",
		"SALAME", "BACON", "PEITO", "COXA", "SOBRECOXA", "FILE", "PICANHA", "ALCATRA", "MAMINHA",
		"COSTELA", "ACEM", "PATINHO", "COXAO", "TILAPIA", "SALMAO", "SARDINHA", "ATUM", "BACALHAU",
		"CAMARAO", "LAGOSTA",
	}},
	{Name: "bread", Keywords: []string{
		"PAO", "BISCOITO", "BOLO", "TORRADA", "PAOZINHO", "FRANCES", "FORMA", "INTEGRAL", "DOCE",
		"SALGADO", "CROISSANT", "BRIOCHE", "CIABATTA", "BAGUETE", "PANETTONE", "PADARIA", "PANIFICACAO",
	}},
	{Name: "snacks", Keywords: []string{
		"CHOCOLATE", "BALA", "CHICLETE", "PIRULITO", "DOCE", "BOMBOM", "TRUFA", "SALGADINHO", "CHIPS",
		"PIPOCA", "AMENDOIM", "CASTANHA", "NOZ", "BISCOITO", "WAFER", "COOKIE", "CRACKER", "ROSQUINHA",
		"PRESTIGIO", "NEST", "GAROTO", "LACTA", "HERSHEY",
	}},
	{Name: "grains", Keywords: []string{
		"ARROZ", "FEIJAO", "MACARRAO", "ESPAGUETE", "FARINHA", "FUBA", "AVEIA", "QUINOA", "LENTILHA",
		"GRAO", "CEREAL", "GRANOLA", "MUESLI",
	}},
	{Name: "cleaning", Keywords: []string{
		"DETERGENTE", "SABAO", "AMACIANTE", "DESINFETANTE", "ALCOOL", "AGUA SANITARIA", "CLORO",
		"LIMPEZA", "LIMPA", "BACTERICIDA", "ANTISETICO", "ANTISSETICO", "HIGIENE",
	}},
	{Name: "condiments", Keywords: []string{
		"SAL", "ACUCAR", "OLEO", "VINAGRE", "AZEITE", "TEMPERO", "CONDIMENTO", "MOLHO", "KETCHUP",
		"MOSTARDA", "MAIONESE", "BARBECUE", "PIMENTA", "OREGANO",
	}},
	{Name: "hygiene", Keywords: []string{
		"SHAMPOO", "CONDICIONADOR", "SABONETE", "PASTA", "DENTE", "DENTAL", "ESCOVA", "DESODORANTE",
		"PERFUME", "CREME", "LOCAO", "PAPEL HIGIENICO", "ABSORVENTE", "FRALDA",
	}},
}

// Abbreviation to synonym forms, matched against lower-case raw tokens.
var defaultDomainRules = []DomainRule{
	// cheese
	{Key: "qjo", Forms: []string{"queijo", "cheese"}},
	{Key: "mus", Forms: []string{"mussarela", "mucarela", "mozzarella"}},
	{Key: "fat", Forms: []string{"fatiado", "fatias", "sliced"}},
	{Key: "presid", Forms: []string{"presidente", "president"}},
	{Key: "sandw", Forms: []string{"sandwich", "sanduiche"}},
	{Key: "ched", Forms: []string{"cheddar"}},
	{Key: "pol", Forms: []string{"poli", "polenghi"}},
	{Key: "gruyere", Forms: []string{"gruyere"}},
	{Key: "form", Forms: []string{"formato", "forma"}},
	{Key: "d", Forms: []string{"de", "do", "da"}},
	// pharmacy
	{Key: "cpr", Forms: []string{"comprimido", "comprimidos", "tablets", "comp"}},
	{Key: "mg", Forms: []string{"miligramas", "milligrams", "mgr"}},
	{Key: "mkg", Forms: []string{"microgramas", "micrograms", "mcg"}},
	{Key: "ml", Forms: []string{"ml", "mililitros"}},
	{Key: "xpe", Forms: []string{"xarope", "syrup"}},
	{Key: "vurtuoso", Forms: []string{"vurtuoso", "virtuoso"}},
	{Key: "levotirox", Forms: []string{"levotiroxina", "levothyroxine"}},
	{Key: "leucogen", Forms: []string{"leucogen", "leukogen"}},
	{Key: "s", Forms: []string{"comprimidos", "tablets", "units"}},
	{Key: "c1", Forms: []string{"caixa", "box", "pack"}},
	// food and beverages
	{Key: "refr", Forms: []string{"refrigerante", "refri", "soda", "soft drink"}},
	{Key: "coca", Forms: []string{"coca-cola", "coke", "cocacola"}},
	{Key: "cola", Forms: []string{"cola"}},
	{Key: "trad", Forms: []string{"tradicional", "traditional", "classico"}},
	{Key: "bomb", Forms: []string{"bombom", "chocolate", "candy"}},
	{Key: "cerv", Forms: []string{"cerveja", "beer"}},
	{Key: "choc", Forms: []string{"chocolate", "choco"}},
	{Key: "nest", Forms: []string{"nestle"}},
	{Key: "prestigio", Forms: []string{"prestigio", "prestige"}},
	{Key: "sonho", Forms: []string{"sonho", "dream"}},
	{Key: "valsa", Forms: []string{"valsa", "waltz"}},
	{Key: "garoto", Forms: []string{"garoto", "boy"}},
	{Key: "heineken", Forms: []string{"heineken"}},
	{Key: "krug", Forms: []string{"krug"}},
	// produce
	{Key: "kg", Forms: []string{"quilograma", "kilogram", "kilo"}},
	{Key: "g", Forms: []string{"gramas", "grams"}},
	{Key: "pocam", Forms: []string{"pokan", "ponkan", "mexerica"}},
	{Key: "ponkan", Forms: []string{"pocam", "pokan", "mexerica"}},
	{Key: "formosa", Forms: []string{"formoso", "papaya", "mamao"}},
	{Key: "mamao", Forms: []string{"mamao", "papaya", "formosa"}},
	{Key: "banana", Forms: []string{"banana"}},
	{Key: "prata", Forms: []string{"prata", "silver"}},
	{Key: "melancia", Forms: []string{"melancia", "watermelon"}},
	{Key: "pin", Forms: []string{"pintado", "spotted"}},
	{Key: "do", Forms: []string{"de", "da", "do"}},
	{Key: "mexerica", Forms: []string{"mexerica", "tangerina", "pocam", "ponkan"}},
	// eggs and dairy
	{Key: "ovos", Forms: []string{"ovos", "ovo", "eggs"}},
	{Key: "bcos", Forms: []string{"brancos", "branco", "white"}},
	{Key: "mant", Forms: []string{"mantidos", "kept", "mantido"}},
	{Key: "branco", Forms: []string{"brancos", "bcos", "white"}},
	{Key: "pente", Forms: []string{"pente", "tray", "bandeja"}},
	// pizza
	{Key: "pizza", Forms: []string{"pizza"}},
	{Key: "esp", Forms: []string{"especial", "special"}},
	{Key: "vm", Forms: []string{"vila madalena", "gourmet"}},
	{Key: "gorgonz", Forms: []string{"gorgonzola"}},
	{Key: "mel", Forms: []string{"mel", "honey"}},
	{Key: "gra", Forms: []string{"grande", "large", "big"}},
	{Key: "carne", Forms: []string{"carne", "meat"}},
	{Key: "frango", Forms: []string{"frango", "chicken"}},
	{Key: "requeijao", Forms: []string{"requeijao", "cream cheese"}},
	{Key: "cremoso", Forms: []string{"cremoso", "creamy"}},
	{Key: "sol", Forms: []string{"sol", "sun"}},
	// coffee
	{Key: "dgusto", Forms: []string{"dgusto", "degusta", "taste"}},
	{Key: "intss", Forms: []string{"intenso", "intense"}},
	{Key: "caser", Forms: []string{"caseiro", "homemade"}},
	{Key: "doub", Forms: []string{"double", "duplo", "dobro"}},
	// units and pack sizes
	{Key: "un", Forms: []string{"unidade", "unit", "unid"}},
	{Key: "unid", Forms: []string{"unidade", "unit", "un"}},
	{Key: "cp", Forms: []string{"comprimidos", "pills", "cpr"}},
	{Key: "l", Forms: []string{"litros", "liters", "liter"}},
	{Key: "160", Forms: []string{"160g", "160gr", "160 gramas"}},
	{Key: "250g", Forms: []string{"250gr", "250 gramas"}},
	{Key: "30", Forms: []string{"30 unidades", "30un", "30 comp"}},
	{Key: "473ml", Forms: []string{"473 ml", "500ml"}},
	{Key: "500ml", Forms: []string{"500 ml", "473ml"}},
	{Key: "120ml", Forms: []string{"120 ml"}},
	{Key: "200mg", Forms: []string{"200 mg"}},
	{Key: "88", Forms: []string{"88mg", "88 mg"}},
	{Key: "100", Forms: []string{"100mg", "100 mg"}},
	{Key: "10mg", Forms: []string{"10 mg"}},
	{Key: "20mg", Forms: []string{"20 mg"}},
	{Key: "60cp", Forms: []string{"60 comprimidos"}},
	{Key: "1.5l", Forms: []string{"1,5l", "1.5 litros"}},
	{Key: "600", Forms: []string{"600ml", "600 ml"}},
	{Key: "3", Forms: []string{"3 litros", "3l"}},
	{Key: "la", Forms: []string{"lata", "can"}},
}

// Lower-case brand fragments looked up by substring in raw descriptions.
var defaultKnownBrands = []string{
	"coca", "cola", "nestle", "nest", "garoto", "heineken", "presidente", "polenghi",
	"vila", "madalena", "prestigio", "sonho", "valsa", "krug", "dgusto",
}

// Parent category to the sub-categories allowed to be compared against it.
var defaultRelatedCategories = map[string][]string{
	"bebida":   {"refrigerante", "agua", "suco"},
	"alimento": {"doce", "salgado", "carne", "fruta"},
	"higiene":  {"limpeza", "perfumaria"},
	"hygiene":  {"cleaning"},
	"fruits":   {"vegetables"},
	"bread":    {"snacks"},
}

// Stripped before abbreviation expansion. Applied case-insensitively, in order.
var unitPatternSources = []string{
	`(?i)\b\d+\s*(KG|KILOS?|G|GRAMAS?)\b`,
	`(?i)\b\d+,?\d*\s*(KG|KILOS?|G|GRAMAS?)\b`,
	`(?i)\b\d+\s*(ML|L|LITROS?)\b`,
	`(?i)\b\d+,?\d*\s*(ML|L|LITROS?)\b`,
	`(?i)\b\d+\s*(UN|UNID|UNIDADES?|PC|PECAS?|CX|CAIXAS?)\b`,
	`(?i)\s+(KG|UN|UF|ML|L|G|UNID|PC|CX)$`,
	`(?i)\s+(KILOS?|GRAMAS?|LITROS?|UNIDADES?|PECAS?|CAIXAS?)$`,
}

var quantityPatternSources = []string{
	`\d+\s*mg`,
	`\d+\s*mkg`,
	`\d+\s*ml`,
	`\d+\s*l`,
	`\d+\s*kg`,
	`\d+\s*g`,
	`\d+\s*cp`,
	`\d+\s*cpr`,
	`\d+\s*un`,
	`\d+\s*unid`,
	`\d+'\s*s`,
	`\d+\s*c\d+`,
	`\d+\s*/\s*\d+`,
}
