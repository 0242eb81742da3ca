package catalog

var welcome = map[string]string{
	"en":    "Welcome to Triage AI. I'll ask you a few questions to understand your symptoms and help direct you to the right care.",
	"es":    "Bienvenido a Triage AI. Le haré algunas preguntas para entender sus síntomas y ayudarle a recibir la atención adecuada.",
	"pt-BR": "Bem-vindo ao Triage AI. Farei algumas perguntas para entender seus sintomas e ajudá-lo a receber o atendimento adequado.",
	"it":    "Benvenuto a Triage AI. Le farò alcune domande per comprendere i suoi sintomi e aiutarla a ricevere le cure appropriate.",
}

var languagePrompt = map[string]string{
	"en":    "Please select your preferred language:",
	"es":    "Por favor seleccione su idioma preferido:",
	"pt-BR": "Por favor, selecione seu idioma preferido:",
	"it":    "Per favore, selezioni la lingua preferita:",
}

var questions = []Question{
	// Demographics
	{
		Number:      1,
		Field:       "patient_name",
		Description: "Patient's full name",
		Translations: map[string]string{
			"en":    "What is your full name?",
			"es":    "¿Cuál es su nombre completo?",
			"pt-BR": "Qual é o seu nome completo?",
			"it":    "Qual è il suo nome completo?",
		},
	},
	{
		Number:      2,
		Field:       "date_of_birth",
		Description: "Patient's date of birth",
		Translations: map[string]string{
			"en":    "What is your date of birth?",
			"es":    "¿Cuál es su fecha de nacimiento?",
			"pt-BR": "Qual é a sua data de nascimento?",
			"it":    "Qual è la sua data di nascita?",
		},
	},
	{
		Number:      3,
		Field:       "phone_number",
		Description: "Contact phone number",
		Translations: map[string]string{
			"en":    "What is your phone number?",
			"es":    "¿Cuál es su número de teléfono?",
			"pt-BR": "Qual é o seu número de telefone?",
			"it":    "Qual è il suo numero di telefono?",
		},
	},
	{
		Number:      4,
		Field:       "emergency_contact_name",
		Description: "Emergency contact person",
		Translations: map[string]string{
			"en":    "Emergency contact name (who should we call in case of emergency)?",
			"es":    "Nombre del contacto de emergencia (¿a quién debemos llamar en caso de emergencia)?",
			"pt-BR": "Nome do contato de emergência (quem devemos ligar em caso de emergência)?",
			"it":    "Nome del contatto di emergenza (chi dobbiamo chiamare in caso di emergenza)?",
		},
	},
	{
		Number:      5,
		Field:       "emergency_contact_phone",
		Description: "Emergency contact phone",
		Translations: map[string]string{
			"en":    "Emergency contact phone number?",
			"es":    "¿Número de teléfono del contacto de emergencia?",
			"pt-BR": "Número de telefone do contato de emergência?",
			"it":    "Numero di telefono del contatto di emergenza?",
		},
	},

	// Chief complaint and symptoms
	{
		Number:      6,
		Field:       "chief_complaint",
		Description: "Main reason for visit",
		Translations: map[string]string{
			"en":    "What brings you in today?",
			"es":    "¿Qué le trae hoy?",
			"pt-BR": "O que o traz aqui hoje?",
			"it":    "Cosa la porta qui oggi?",
		},
	},
	{
		Number:      7,
		Field:       "onset",
		Description: "When symptoms started",
		Translations: map[string]string{
			"en":    "When did this start?",
			"es":    "¿Cuándo comenzó esto?",
			"pt-BR": "Quando isso começou?",
			"it":    "Quando è iniziato?",
		},
	},
	{
		Number:      8,
		Field:       "pain_scale",
		Description: "Severity rating",
		Translations: map[string]string{
			"en":    "On a scale of 1-10, how severe is it?",
			"es":    "En una escala del 1 al 10, ¿qué tan severo es?",
			"pt-BR": "Em uma escala de 1 a 10, qual a intensidade?",
			"it":    "Su una scala da 1 a 10, quanto è grave?",
		},
	},
	{
		Number:      9,
		Field:       "location",
		Description: "Body location",
		Translations: map[string]string{
			"en":    "Where exactly is the problem located?",
			"es":    "¿Dónde exactamente está ubicado el problema?",
			"pt-BR": "Onde exatamente está localizado o problema?",
			"it":    "Dove si trova esattamente il problema?",
		},
	},
	{
		Number:      10,
		Field:       "radiation",
		Description: "Pain radiation",
		Translations: map[string]string{
			"en":    "Does the pain spread anywhere else?",
			"es":    "¿El dolor se extiende a algún otro lugar?",
			"pt-BR": "A dor se espalha para algum outro lugar?",
			"it":    "Il dolore si irradia altrove?",
		},
	},
	{
		Number:      11,
		Field:       "associated_symptoms",
		Description: "Associated symptoms",
		Translations: map[string]string{
			"en":    "Any other symptoms? (dizziness, nausea, fever, etc.)",
			"es":    "¿Algún otro síntoma? (mareos, náuseas, fiebre, etc.)",
			"pt-BR": "Algum outro sintoma? (tontura, náusea, febre, etc.)",
			"it":    "Altri sintomi? (vertigini, nausea, febbre, ecc.)",
		},
	},
	{
		Number:      12,
		Field:       "medical_history",
		Description: "Past medical history",
		Translations: map[string]string{
			"en":    "Do you have any medical conditions?",
			"es":    "¿Tiene alguna condición médica?",
			"pt-BR": "Você tem alguma condição médica?",
			"it":    "Ha qualche condizione medica?",
		},
	},
	{
		Number:      13,
		Field:       "current_medications",
		Description: "Current medications",
		Translations: map[string]string{
			"en":    "What medications are you currently taking?",
			"es":    "¿Qué medicamentos está tomando actualmente?",
			"pt-BR": "Quais medicamentos você está tomando atualmente?",
			"it":    "Quali farmaci sta assumendo attualmente?",
		},
	},
	{
		Number:      14,
		Field:       "allergies",
		Description: "Known allergies",
		Translations: map[string]string{
			"en":    "Do you have any allergies?",
			"es":    "¿Tiene alguna alergia?",
			"pt-BR": "Você tem alguma alergia?",
			"it":    "Ha qualche allergia?",
		},
	},
}
